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

// Package leakcheck accounts for live reference-counted objects. Hosts
// register with a Tracker when constructed and deregister from their
// destructor; whatever is still registered at shutdown leaked.
package leakcheck

import (
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// Record describes one live object.
type Record struct {
	ID        uint64    `json:"id"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	Stack     string    `json:"stack,omitempty"`
}

type kindStats struct {
	live     int64
	tracked  *metrics.Counter
	freed    *metrics.Counter
	lifetime *metrics.Summary
}

type Tracker struct {
	mu    sync.Mutex
	seq   uint64
	live  map[uint64]*Record
	kinds map[string]*kindStats

	withStacks  bool
	withMetrics bool
}

type Option func(*Tracker)

// WithStacks records the creation stack of every tracked object. Costly;
// meant for hunting a known leak, not for production defaults.
func WithStacks(on bool) Option {
	return func(t *Tracker) {
		t.withStacks = on
	}
}

// WithMetrics registers per-kind counters and live gauges with the process
// metrics set. Registration is global, so at most one Tracker per process
// may enable it.
func WithMetrics(on bool) Option {
	return func(t *Tracker) {
		t.withMetrics = on
	}
}

func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		live:  make(map[uint64]*Record),
		kinds: make(map[string]*kindStats),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) kindStatsLocked(kind string) *kindStats {
	ks, ok := t.kinds[kind]
	if !ok {
		ks = &kindStats{}
		if t.withMetrics {
			ks.tracked = metrics.NewCounter(fmt.Sprintf(`refcnt_tracked_total{kind=%q}`, kind))
			ks.freed = metrics.NewCounter(fmt.Sprintf(`refcnt_freed_total{kind=%q}`, kind))
			ks.lifetime = metrics.NewSummary(fmt.Sprintf(`refcnt_lifetime_seconds{kind=%q}`, kind))
			metrics.NewGauge(fmt.Sprintf(`refcnt_live{kind=%q}`, kind), func() float64 {
				return float64(t.LiveKind(kind))
			})
		}
		t.kinds[kind] = ks
	}
	return ks
}

// Track registers a newly constructed object and returns its id, which the
// host keeps and passes to Untrack from its destructor.
func (t *Tracker) Track(kind string) uint64 {
	if t == nil {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	rec := &Record{
		ID:        t.seq,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
	if t.withStacks {
		rec.Stack = string(debug.Stack())
	}
	t.live[rec.ID] = rec

	ks := t.kindStatsLocked(kind)
	ks.live++
	if ks.tracked != nil {
		ks.tracked.Inc()
	}
	return rec.ID
}

// Untrack deregisters a destroyed object. Unknown ids are ignored so that
// hosts built without a tracker can pass a zero id through.
func (t *Tracker) Untrack(id uint64) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.live[id]
	if !ok {
		return
	}
	delete(t.live, id)

	ks := t.kindStatsLocked(rec.Kind)
	ks.live--
	if ks.freed != nil {
		ks.freed.Inc()
	}
	if ks.lifetime != nil {
		ks.lifetime.Update(time.Since(rec.CreatedAt).Seconds())
	}
}

// Live returns the number of tracked objects not yet destroyed.
func (t *Tracker) Live() int {
	if t == nil {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// LiveKind returns the live count for one kind.
func (t *Tracker) LiveKind(kind string) int64 {
	if t == nil {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if ks, ok := t.kinds[kind]; ok {
		return ks.live
	}
	return 0
}

// Snapshot returns the live records ordered by creation.
func (t *Tracker) Snapshot() []Record {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	recs := make([]Record, 0, len(t.live))
	for _, rec := range t.live {
		recs = append(recs, *rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs
}

// Reset drops all live records and per-kind counts.
func (t *Tracker) Reset() {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.live = make(map[uint64]*Record)
	for _, ks := range t.kinds {
		ks.live = 0
	}
}
