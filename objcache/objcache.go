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

// Package objcache is a sharded LRU cache of reference-counted items. The
// cache owns one reference per entry and every Get pins another, so evicted
// values survive until their last pin is gone and dispose exactly once.
package objcache

import (
	"fmt"
	"math"

	"go.uber.org/atomic"

	"github.com/zuoyebang/refcnt"
	"github.com/zuoyebang/refcnt/leakcheck"
)

const (
	minShards = 1
	maxShards = 256

	defaultShards = 8
)

type ILogger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type Option[V any] func(c *Cache[V])

func WithShards[V any](shards int) Option[V] {
	return func(c *Cache[V]) {
		c.shardCnt = shards
	}
}

// WithDisposer sets the hook run when an item's last reference is dropped.
// It must not call back into the cache.
func WithDisposer[V any](disposer func(V)) Option[V] {
	return func(c *Cache[V]) {
		c.disposer = disposer
	}
}

func WithTracker[V any](tracker *leakcheck.Tracker) Option[V] {
	return func(c *Cache[V]) {
		c.tracker = tracker
	}
}

func WithLogger[V any](logger ILogger) Option[V] {
	return func(c *Cache[V]) {
		c.logger = logger
	}
}

type Cache[V any] struct {
	shardCnt int
	mask     uint64
	shards   []*shard[V]
	disposer func(V)
	tracker  *leakcheck.Tracker
	logger   ILogger

	puts      atomic.Int64
	hits      atomic.Int64
	misses    atomic.Int64
	drops     atomic.Int64
	disposals atomic.Int64
}

// New builds a cache holding up to capacity entries spread over the shards.
func New[V any](capacity int, ops ...Option[V]) *Cache[V] {
	c := &Cache[V]{shardCnt: defaultShards}
	for _, op := range ops {
		op(c)
	}

	if c.shardCnt > maxShards {
		c.shardCnt = maxShards
	} else if c.shardCnt < minShards {
		c.shardCnt = minShards
	}
	power := math.Ceil(math.Log2(float64(c.shardCnt)))
	c.shardCnt = int(math.Pow(2, power))
	c.mask = uint64(c.shardCnt - 1)

	if capacity < c.shardCnt {
		capacity = c.shardCnt
	}
	perShard := (capacity + c.shardCnt - 1) / c.shardCnt

	c.shards = make([]*shard[V], c.shardCnt)
	for i := range c.shards {
		c.shards[i] = newShard(c, perShard)
	}
	return c
}

func (c *Cache[V]) shardFor(key string) *shard[V] {
	return c.shards[hashKey(key)&c.mask]
}

// Put inserts the value under key, replacing any previous entry. The cache
// takes its own reference on the new item; the replaced item's cache
// reference is dropped.
func (c *Cache[V]) Put(key string, value V) {
	c.puts.Inc()
	c.shardFor(key).put(key, c.newItem(key, value))
}

// Get returns a pinned handle to the item under key. The caller releases
// the handle when done with the value.
func (c *Cache[V]) Get(key string) (refcnt.Ref[*Item[V]], bool) {
	r, ok := c.shardFor(key).get(key)
	if ok {
		c.hits.Inc()
	} else {
		c.misses.Inc()
	}
	return r, ok
}

// GetValue returns the value under key together with a closer releasing its
// pin.
func (c *Cache[V]) GetValue(key string) (v V, closer func(), ok bool) {
	r, ok := c.Get(key)
	if !ok {
		return v, nil, false
	}
	return r.Get().Value(), r.Release, true
}

// Delete drops the cache's reference to the entry under key. Pinned readers
// keep the value alive until their handles are released.
func (c *Cache[V]) Delete(key string) bool {
	return c.shardFor(key).delete(key)
}

// Purge drops the cache's reference to every entry.
func (c *Cache[V]) Purge() {
	n := 0
	for _, s := range c.shards {
		n += s.purge()
	}
	if c.logger != nil {
		c.logger.Infof("objcache: purge dropped %d entries", n)
	}
}

// Close is Purge; the cache keeps no other resources.
func (c *Cache[V]) Close() {
	c.Purge()
}

func (c *Cache[V]) Len() int {
	n := 0
	for _, s := range c.shards {
		n += s.len()
	}
	return n
}

type Stats struct {
	Puts      int64
	Hits      int64
	Misses    int64
	Drops     int64
	Disposals int64
}

func (s Stats) String() string {
	return fmt.Sprintf("puts:%d hits:%d misses:%d drops:%d disposals:%d",
		s.Puts, s.Hits, s.Misses, s.Drops, s.Disposals)
}

func (c *Cache[V]) Stats() Stats {
	return Stats{
		Puts:      c.puts.Load(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Drops:     c.drops.Load(),
		Disposals: c.disposals.Load(),
	}
}

func hashKey(key string) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	h := uint64(offset64)
	for i := 0; i < len(key); i++ {
		h ^= uint64(key[i])
		h *= prime64
	}
	return h
}
