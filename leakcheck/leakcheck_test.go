// Copyright 2019-2024 Xu Ruibo (hustxurb@163.com) and Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package leakcheck

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_TrackUntrack(t *testing.T) {
	tr := NewTracker()

	id1 := tr.Track("buffer")
	id2 := tr.Track("buffer")
	id3 := tr.Track("item")
	assert.Equal(t, 3, tr.Live())
	assert.Equal(t, int64(2), tr.LiveKind("buffer"))
	assert.Equal(t, int64(1), tr.LiveKind("item"))
	assert.Equal(t, int64(0), tr.LiveKind("unknown"))

	tr.Untrack(id2)
	assert.Equal(t, 2, tr.Live())
	assert.Equal(t, int64(1), tr.LiveKind("buffer"))

	tr.Untrack(id2)
	assert.Equal(t, 2, tr.Live())

	recs := tr.Snapshot()
	require.Len(t, recs, 2)
	assert.Equal(t, id1, recs[0].ID)
	assert.Equal(t, id3, recs[1].ID)
	assert.Equal(t, "buffer", recs[0].Kind)
	assert.Empty(t, recs[0].Stack)

	tr.Untrack(id1)
	tr.Untrack(id3)
	assert.Equal(t, 0, tr.Live())
}

func TestTracker_Check(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Check())

	tr.Track("buffer")
	tr.Track("buffer")
	tr.Track("item")

	err := tr.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 live object(s)")
	assert.Contains(t, err.Error(), "buffer=2")
	assert.Contains(t, err.Error(), "item=1")

	tr.Reset()
	require.NoError(t, tr.Check())
}

func TestTracker_Stacks(t *testing.T) {
	tr := NewTracker(WithStacks(true))
	tr.Track("buffer")

	recs := tr.Snapshot()
	require.Len(t, recs, 1)
	assert.True(t, strings.Contains(recs[0].Stack, "Track"))
}

func TestTracker_ReportJSON(t *testing.T) {
	tr := NewTracker()
	tr.Track("buffer")
	tr.Track("item")

	var buf bytes.Buffer
	require.NoError(t, tr.ReportJSON(&buf))

	var rep report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rep))
	assert.Equal(t, 2, rep.Live)
	require.Len(t, rep.Records, 2)
	assert.Equal(t, "buffer", rep.Records[0].Kind)
}

func TestTracker_Nil(t *testing.T) {
	var tr *Tracker
	assert.Equal(t, uint64(0), tr.Track("buffer"))
	assert.NotPanics(t, func() { tr.Untrack(1) })
	assert.Equal(t, 0, tr.Live())
	assert.Nil(t, tr.Snapshot())
}

func TestTracker_Concurrent(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				id := tr.Track("buffer")
				tr.Untrack(id)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, tr.Live())
	assert.NoError(t, tr.Check())
}
