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

package refcnt

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_Basic(t *testing.T) {
	var c Counter
	assert.Equal(t, int32(0), c.Refs())

	c.Acquire()
	c.Acquire()
	assert.Equal(t, int32(2), c.Refs())

	assert.False(t, c.Release())
	assert.Equal(t, int32(1), c.Refs())
	assert.True(t, c.Release())
	assert.Equal(t, int32(0), c.Refs())
}

func TestCounter_ReleaseUnderflow(t *testing.T) {
	var c Counter
	assert.PanicsWithValue(t, "refcnt: inconsistent reference count: -1", func() {
		c.Release()
	})

	c = Counter{}
	c.Acquire()
	assert.True(t, c.Release())
	assert.PanicsWithValue(t, "refcnt: inconsistent reference count: -1", func() {
		c.Release()
	})
}

func TestCounter_FreeOnLastOnly(t *testing.T) {
	var c Counter
	for i := 0; i < 10; i++ {
		c.Acquire()
	}
	for i := 0; i < 9; i++ {
		assert.False(t, c.Release())
	}
	assert.True(t, c.Release())
}

func TestAtomicCounter_Basic(t *testing.T) {
	var c AtomicCounter
	assert.Equal(t, int32(0), c.Refs())

	c.Acquire()
	c.Acquire()
	assert.Equal(t, int32(2), c.Refs())

	assert.False(t, c.Release())
	assert.True(t, c.Release())
	assert.Equal(t, int32(0), c.Refs())

	assert.PanicsWithValue(t, "refcnt: inconsistent reference count: -1", func() {
		c.Release()
	})
}

func TestAtomicCounter_Concurrent(t *testing.T) {
	var c AtomicCounter
	c.Acquire()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 2000; j++ {
				c.Acquire()
				assert.False(t, c.Release())
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), c.Refs())
	require.True(t, c.Release())
}
