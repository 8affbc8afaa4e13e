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
	"github.com/zuoyebang/refcnt"
)

// Buffer is a reference-counted slice of arena memory. It leaves Alloc with
// a zero count; the caller adopts it into a refcnt.Ref, and the Release that
// drops the last reference hands the memory back to the arena.
//
// Buffers move between goroutines, so the count is atomic.
type Buffer struct {
	data  []byte
	slot  []byte
	arena *Arena
	tid   uint64
	class int
	ref   refcnt.AtomicCounter
}

// Acquire adds a reference.
func (b *Buffer) Acquire() {
	b.ref.Acquire()
}

// Release drops a reference. The last release reclaims the buffer's memory;
// the bytes must not be touched afterwards.
func (b *Buffer) Release() {
	if b.ref.Release() {
		b.arena.reclaim(b)
	}
}

// Refs returns the current count.
func (b *Buffer) Refs() int32 {
	return b.ref.Refs()
}

// Bytes returns the buffer's memory. Valid only while a reference is held.
func (b *Buffer) Bytes() []byte {
	return b.data
}

func (b *Buffer) Len() int {
	return len(b.data)
}
