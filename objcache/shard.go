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
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"

	"github.com/zuoyebang/refcnt"
)

type shard[V any] struct {
	c   *Cache[V]
	mu  sync.Mutex
	lru *simplelru.LRU
}

func newShard[V any](c *Cache[V], capacity int) *shard[V] {
	s := &shard[V]{c: c}
	s.lru, _ = simplelru.NewLRU(capacity, func(key interface{}, value interface{}) {
		c.drops.Inc()
		value.(*Item[V]).Release()
	})
	return s
}

func (s *shard[V]) put(key string, it *Item[V]) {
	it.Acquire()
	s.mu.Lock()
	// Add on an existing key replaces the value without the evict callback;
	// Remove first so the old item's cache reference is dropped.
	s.lru.Remove(key)
	s.lru.Add(key, it)
	s.mu.Unlock()
}

func (s *shard[V]) get(key string) (refcnt.Ref[*Item[V]], bool) {
	s.mu.Lock()
	v, ok := s.lru.Get(key)
	if !ok {
		s.mu.Unlock()
		return refcnt.Ref[*Item[V]]{}, false
	}
	// The pin is taken under the shard lock, before any eviction can drop
	// the cache's reference.
	r := refcnt.NewRef(v.(*Item[V]))
	s.mu.Unlock()
	return r, true
}

func (s *shard[V]) delete(key string) bool {
	s.mu.Lock()
	ok := s.lru.Remove(key)
	s.mu.Unlock()
	return ok
}

func (s *shard[V]) purge() int {
	s.mu.Lock()
	n := s.lru.Len()
	s.lru.Purge()
	s.mu.Unlock()
	return n
}

func (s *shard[V]) len() int {
	s.mu.Lock()
	n := s.lru.Len()
	s.mu.Unlock()
	return n
}
