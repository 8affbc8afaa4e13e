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

// Base is an embeddable mixin that gives its host the RefCounted capability
// with a plain, unsynchronized count. The host installs its destructor with
// SetFree, usually in its constructor; the Release call that drops the last
// reference runs it exactly once, synchronously.
//
// The zero value holds no references and no destructor. A host without a
// destructor simply becomes garbage when its count reaches zero.
type Base struct {
	ref  Counter
	free func()
}

// SetFree installs the destructor run when the count reaches zero.
func (b *Base) SetFree(free func()) {
	b.free = free
}

// Acquire adds a reference.
func (b *Base) Acquire() {
	b.ref.Acquire()
}

// Release drops a reference, destroying the host when it was the last one.
// Releasing a zero count panics.
func (b *Base) Release() {
	if b.ref.Release() && b.free != nil {
		b.free()
	}
}

// Refs returns the current count.
func (b *Base) Refs() int32 {
	return b.ref.Refs()
}

// AtomicBase is Base with an atomic count, for hosts referenced across
// goroutines.
type AtomicBase struct {
	ref  AtomicCounter
	free func()
}

// SetFree installs the destructor run when the count reaches zero. It must
// be called before the host is shared.
func (b *AtomicBase) SetFree(free func()) {
	b.free = free
}

// Acquire adds a reference.
func (b *AtomicBase) Acquire() {
	b.ref.Acquire()
}

// Release drops a reference, destroying the host when it was the last one.
// Releasing a zero count panics.
func (b *AtomicBase) Release() {
	if b.ref.Release() && b.free != nil {
		b.free()
	}
}

// Refs returns the current count.
func (b *AtomicBase) Refs() int32 {
	return b.ref.Refs()
}
