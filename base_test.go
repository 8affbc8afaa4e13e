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
	"go.uber.org/atomic"
)

func TestBase_FreeExactlyOnce(t *testing.T) {
	freed := 0
	var b Base
	b.SetFree(func() { freed++ })

	b.Acquire()
	b.Acquire()
	b.Release()
	assert.Equal(t, 0, freed)
	b.Release()
	assert.Equal(t, 1, freed)
}

func TestBase_NoDestructor(t *testing.T) {
	var b Base
	b.Acquire()
	assert.NotPanics(t, func() { b.Release() })
	assert.Equal(t, int32(0), b.Refs())
}

func TestBase_ReleaseUnderflow(t *testing.T) {
	var b Base
	b.SetFree(func() {})
	assert.Panics(t, func() { b.Release() })
}

func TestAtomicBase_FreeExactlyOnce(t *testing.T) {
	var freed atomic.Int32
	var b AtomicBase
	b.SetFree(func() { freed.Inc() })

	b.Acquire()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 2000; j++ {
				b.Acquire()
				b.Release()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(0), freed.Load())
	require.Equal(t, int32(1), b.Refs())
	b.Release()
	require.Equal(t, int32(1), freed.Load())
}
