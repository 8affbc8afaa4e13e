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

package objcache

import (
	"github.com/zuoyebang/refcnt"
)

// Item carries one cached value. The cache holds its own reference; every
// pin handed out by Get holds another, so a value stays usable after
// eviction until the last pin is released. The disposer runs exactly once,
// on whichever release drops the count to zero.
type Item[V any] struct {
	refcnt.AtomicBase
	key   string
	value V
}

func (it *Item[V]) Key() string {
	return it.key
}

func (it *Item[V]) Value() V {
	return it.value
}

func (c *Cache[V]) newItem(key string, value V) *Item[V] {
	it := &Item[V]{key: key, value: value}
	tid := c.tracker.Track("objcache.item")
	it.SetFree(func() {
		c.tracker.Untrack(tid)
		c.disposals.Inc()
		if c.disposer != nil {
			c.disposer(it.value)
		}
	})
	return it
}
