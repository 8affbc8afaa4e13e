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

// Package refcnt provides intrusive reference counting: objects carry their
// own count and destroy themselves when the last reference is dropped, and
// Ref is the owning handle that manages such counts.
package refcnt

import "fmt"

// RefCounted is the capability an object must expose to be managed by Ref.
// Acquire adds a reference; Release drops one and destroys the object when
// the last reference goes away.
type RefCounted interface {
	Acquire()
	Release()
}

// Counted constrains the element types a Ref can hold. Handles compare by
// referent identity, so the type must be comparable: in practice a pointer
// to a struct embedding Base or AtomicBase, an interface such as RefCounted
// itself, or any comparable type implementing the two methods by hand.
type Counted interface {
	comparable
	RefCounted
}

// Counter is an embeddable reference count. It is not synchronized; hosts
// shared across goroutines use AtomicCounter instead.
//
// The zero value holds no references. A host that copies itself must leave
// the counter behind: the copy is a new object and starts at zero.
type Counter struct {
	n int32
}

// Acquire adds a reference.
func (c *Counter) Acquire() {
	c.n++
}

// Release drops a reference and reports whether the count reached zero, at
// which point the caller destroys the host. Releasing a zero count panics.
func (c *Counter) Release() bool {
	c.n--
	switch {
	case c.n < 0:
		panic(fmt.Sprintf("refcnt: inconsistent reference count: %d", c.n))
	case c.n == 0:
		return true
	default:
		return false
	}
}

// Refs returns the current count.
func (c *Counter) Refs() int32 {
	return c.n
}
