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

package arena

import (
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zuoyebang/refcnt"
	"github.com/zuoyebang/refcnt/leakcheck"
)

func fillBytes(b []byte, seed byte) {
	for i := range b {
		b[i] = seed + byte(i)
	}
}

func checkBytes(t *testing.T, b []byte, seed byte) {
	for i := range b {
		require.Equal(t, seed+byte(i), b[i])
	}
}

func TestArena_AllocRelease(t *testing.T) {
	a := NewArena()
	defer a.Close()

	buf, err := a.Alloc(100)
	require.NoError(t, err)
	require.Equal(t, int32(0), buf.Refs())
	assert.Equal(t, 100, buf.Len())

	fillBytes(buf.Bytes(), 7)
	checkBytes(t, buf.Bytes(), 7)

	r := refcnt.NewRef(buf)
	assert.Equal(t, int32(1), buf.Refs())

	st := a.Stats()
	assert.Equal(t, 1, st.Live)
	assert.Equal(t, 1, st.Chunks)

	r.Release()
	st = a.Stats()
	assert.Equal(t, 0, st.Live)
	assert.Equal(t, uint64(0), st.Inuse)
}

func TestArena_Reuse(t *testing.T) {
	a := NewArena()
	defer a.Close()

	r, err := a.AllocRef(100)
	require.NoError(t, err)
	r.Release()

	r, err = a.AllocRef(120)
	require.NoError(t, err)
	defer r.Release()

	st := a.Stats()
	assert.Equal(t, uint64(1), st.Reuses)
	assert.Equal(t, 1, st.Chunks)
}

func TestArena_Large(t *testing.T) {
	a := NewArena()
	defer a.Close()

	r, err := a.AllocRef(100 << 10)
	require.NoError(t, err)

	fillBytes(r.Get().Bytes(), 3)
	checkBytes(t, r.Get().Bytes(), 3)

	st := a.Stats()
	assert.Equal(t, uint64(1), st.Larges)
	assert.Equal(t, 0, st.Chunks)
	assert.GreaterOrEqual(t, st.Mapped, uint64(100<<10))

	r.Release()
	st = a.Stats()
	assert.Equal(t, uint64(0), st.Mapped)
	assert.Equal(t, 0, st.Live)
}

func TestArena_BadSize(t *testing.T) {
	a := NewArena()
	defer a.Close()

	_, err := a.Alloc(0)
	assert.True(t, errors.Is(err, ErrBadSize))
	_, err = a.Alloc(-5)
	assert.True(t, errors.Is(err, ErrBadSize))
}

func TestArena_Close(t *testing.T) {
	a := NewArena()

	r, err := a.AllocRef(64)
	require.NoError(t, err)

	err = a.Close()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBusy))

	r.Release()
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	_, err = a.Alloc(64)
	assert.True(t, errors.Is(err, ErrClosed))
}

func TestArena_Tracker(t *testing.T) {
	tr := leakcheck.NewTracker()
	a := NewArena(WithTracker(tr))
	defer a.Close()

	r1, err := a.AllocRef(64)
	require.NoError(t, err)
	r2, err := a.AllocRef(64)
	require.NoError(t, err)

	assert.Equal(t, 2, tr.Live())
	assert.Equal(t, int64(2), tr.LiveKind("arena.buffer"))

	r1.Release()
	assert.Equal(t, 1, tr.Live())
	require.Error(t, tr.Check())

	r2.Release()
	assert.Equal(t, 0, tr.Live())
	require.NoError(t, tr.Check())
}

func TestArena_SharedBuffer(t *testing.T) {
	a := NewArena()
	defer a.Close()

	r, err := a.AllocRef(256)
	require.NoError(t, err)
	fillBytes(r.Get().Bytes(), 11)

	c := r.Clone()
	r.Release()
	checkBytes(t, c.Get().Bytes(), 11)
	assert.Equal(t, 1, a.Stats().Live)

	c.Release()
	assert.Equal(t, 0, a.Stats().Live)
}

func TestArena_Concurrent(t *testing.T) {
	a := NewArena(WithChunkSize(256 << 10))
	defer a.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed byte) {
			defer wg.Done()
			for i := 0; i < 300; i++ {
				size := 16 + int(seed)*31 + i%2000
				r, err := a.AllocRef(size)
				assert.NoError(t, err)
				fillBytes(r.Get().Bytes(), seed)
				checkBytes(t, r.Get().Bytes(), seed)
				r.Release()
			}
		}(byte(g))
	}
	wg.Wait()

	st := a.Stats()
	assert.Equal(t, 0, st.Live)
	assert.Equal(t, uint64(0), st.Inuse)
}

func TestClassFor(t *testing.T) {
	assert.Equal(t, 0, classFor(1))
	assert.Equal(t, 0, classFor(16))
	assert.Equal(t, 1, classFor(17))
	assert.Equal(t, 7, classFor(2048))
	assert.Equal(t, 8, classFor(2049))
	assert.Equal(t, 11, classFor(maxClassSize))
	assert.Equal(t, -1, classFor(maxClassSize+1))

	for class := 0; class < numClasses; class++ {
		assert.Equal(t, class, classFor(classSize(class)))
	}
}
