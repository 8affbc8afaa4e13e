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
	"fmt"

	"go.uber.org/atomic"
)

// AtomicCounter is Counter with atomic updates, for hosts whose references
// are acquired and released across goroutines. Choosing between the two is
// a type-level decision of the host; the managed object pays for atomicity
// only when it embeds this variant.
type AtomicCounter struct {
	n atomic.Int32
}

// Acquire adds a reference.
func (c *AtomicCounter) Acquire() {
	c.n.Inc()
}

// Release drops a reference and reports whether the count reached zero, at
// which point the caller destroys the host. Releasing a zero count panics.
func (c *AtomicCounter) Release() bool {
	switch n := c.n.Dec(); {
	case n < 0:
		panic(fmt.Sprintf("refcnt: inconsistent reference count: %d", n))
	case n == 0:
		return true
	default:
		return false
	}
}

// Refs returns the current count.
func (c *AtomicCounter) Refs() int32 {
	return c.n.Load()
}
