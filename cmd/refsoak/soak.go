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

package main

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/juju/ratelimit"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/atomic"

	"github.com/zuoyebang/refcnt"
	"github.com/zuoyebang/refcnt/arena"
	"github.com/zuoyebang/refcnt/internal/config"
	"github.com/zuoyebang/refcnt/internal/log"
	"github.com/zuoyebang/refcnt/internal/task"
	"github.com/zuoyebang/refcnt/leakcheck"
	"github.com/zuoyebang/refcnt/objcache"
)

type bufRef = refcnt.Ref[*arena.Buffer]

// Soak churns the cache and the arena from a worker pool, holding a rolling
// set of pinned items, and checks at shutdown that every counted object was
// destroyed.
type Soak struct {
	cfg     *config.Config
	tracker *leakcheck.Tracker
	arena   *arena.Arena
	cache   *objcache.Cache[bufRef]
	bucket  *ratelimit.Bucket

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	maxPins int
	mu      sync.Mutex
	pins    []refcnt.Ref[refcnt.RefCounted]

	ops    atomic.Int64
	allocs atomic.Int64
	fails  atomic.Int64
}

func NewSoak(cfg *config.Config) *Soak {
	tracker := leakcheck.NewTracker(
		leakcheck.WithStacks(cfg.Soak.TrackStacks),
		leakcheck.WithMetrics(cfg.Plugin.OpenMetrics),
	)

	s := &Soak{
		cfg:     cfg,
		tracker: tracker,
		arena: arena.NewArena(
			arena.WithChunkSize(cfg.Arena.ChunkSize.AsInt()),
			arena.WithTracker(tracker),
		),
		stop:    make(chan struct{}),
		maxPins: cfg.Soak.Workers * 8,
	}
	s.cache = objcache.New[bufRef](cfg.Cache.Capacity,
		objcache.WithShards[bufRef](cfg.Cache.Shards),
		objcache.WithTracker[bufRef](tracker),
		objcache.WithLogger[bufRef](log.GetLogger()),
		objcache.WithDisposer[bufRef](func(r bufRef) { r.Release() }),
	)
	if cfg.Soak.OpsPerSec > 0 {
		s.bucket = ratelimit.NewBucketWithRate(float64(cfg.Soak.OpsPerSec), cfg.Soak.OpsPerSec)
	}
	return s
}

// Run drives the workload until the configured duration elapses or Stop is
// called, logging stats at every report interval.
func (s *Soak) Run() {
	defer log.Cost("soak")()

	deadline := time.Now().Add(s.cfg.Soak.Duration.Duration())

	reporter := task.Run("soak reporter", func(t *task.Task) error {
		tick := time.NewTicker(s.cfg.Soak.ReportEvery.Duration())
		defer tick.Stop()
		for {
			select {
			case <-s.stop:
				return nil
			case <-tick.C:
				s.report()
			}
		}
	})

	pool, err := ants.NewPoolWithFunc(
		s.cfg.Soak.Workers,
		func(i interface{}) { s.worker(i.(int), deadline) },
		ants.WithPreAlloc(true))
	if err != nil {
		log.Errorf("soak worker pool err:%v", err)
		s.Stop()
		reporter.Wait()
		return
	}

	for i := 0; i < s.cfg.Soak.Workers; i++ {
		s.wg.Add(1)
		if err = pool.Invoke(i); err != nil {
			s.wg.Done()
			log.Errorf("soak invoke worker %d err:%v", i, err)
		}
	}
	s.wg.Wait()
	pool.Release()

	s.Stop()
	reporter.Wait()
	s.report()
}

// Stop ends the workload early. Safe to call more than once.
func (s *Soak) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Close tears the workload down in reference order: drop the pins, purge the
// cache (releasing every buffer), close the arena, then ask the tracker
// whether anything counted is still alive.
func (s *Soak) Close() error {
	s.releasePins()
	s.cache.Close()
	log.Infof("soak final cache[%s]", s.cache.Stats())

	if err := s.arena.Close(); err != nil {
		return err
	}
	return s.tracker.Check()
}

func (s *Soak) worker(seed int, deadline time.Time) {
	defer s.wg.Done()

	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(seed)))
	for time.Now().Before(deadline) {
		select {
		case <-s.stop:
			return
		default:
		}
		if s.bucket != nil {
			s.bucket.Wait(1)
		}
		s.oneOp(rng)
		s.ops.Inc()
	}
}

func (s *Soak) oneOp(rng *rand.Rand) {
	switch rng.Intn(10) {
	case 0, 1, 2:
		s.opPut(rng)
	case 3, 4, 5, 6:
		s.opGet(rng)
	case 7:
		s.cache.Delete(s.key(rng))
	case 8:
		s.opChurn(rng)
	default:
		s.opUnpin(rng)
	}
}

// opPut fills a fresh arena buffer and hands its only reference to the
// cache; the entry it replaces, if any, is released by the cache.
func (s *Soak) opPut(rng *rand.Rand) {
	size := s.valueSize(rng)
	br, err := s.arena.AllocRef(size)
	if err != nil {
		s.fails.Inc()
		log.Errorf("soak alloc %d err:%s", size, err.Error())
		return
	}
	s.allocs.Inc()

	key := s.key(rng)
	copy(br.Get().Bytes(), key)
	s.cache.Put(key, br.Move())
}

// opGet pins an entry and reads through it; some pins join the rolling pin
// set as Ref[RefCounted], outliving the read and possibly the entry itself.
func (s *Soak) opGet(rng *rand.Rand) {
	r, ok := s.cache.Get(s.key(rng))
	if !ok {
		return
	}

	buf := r.Get().Value().Get()
	if n := buf.Len(); n > 0 {
		_ = buf.Bytes()[rng.Intn(n)]
	}

	if rng.Intn(4) == 0 {
		s.holdPin(refcnt.Convert[refcnt.RefCounted](r))
	}
	r.Release()
}

// opChurn exercises the arena alone: allocate, touch, release.
func (s *Soak) opChurn(rng *rand.Rand) {
	br, err := s.arena.AllocRef(s.valueSize(rng))
	if err != nil {
		s.fails.Inc()
		return
	}
	s.allocs.Inc()
	br.Get().Bytes()[0] = byte(rng.Int())
	br.Release()
}

func (s *Soak) holdPin(pin refcnt.Ref[refcnt.RefCounted]) {
	var old refcnt.Ref[refcnt.RefCounted]

	s.mu.Lock()
	s.pins = append(s.pins, pin)
	if len(s.pins) > s.maxPins {
		old = s.pins[0].Move()
		s.pins = s.pins[1:]
	}
	s.mu.Unlock()

	if !old.Empty() {
		if hold := s.cfg.Soak.PinHold.Duration(); hold > 0 {
			time.Sleep(hold)
		}
		old.Release()
	}
}

func (s *Soak) opUnpin(rng *rand.Rand) {
	var pin refcnt.Ref[refcnt.RefCounted]

	s.mu.Lock()
	if n := len(s.pins); n > 0 {
		i := rng.Intn(n)
		pin = s.pins[i].Move()
		s.pins[i] = s.pins[n-1]
		s.pins = s.pins[:n-1]
	}
	s.mu.Unlock()

	pin.Release()
}

func (s *Soak) releasePins() {
	s.mu.Lock()
	pins := s.pins
	s.pins = nil
	s.mu.Unlock()

	for i := range pins {
		pins[i].Release()
	}
}

func (s *Soak) valueSize(rng *rand.Rand) int {
	// Every so often punch through the size classes into a dedicated mapping.
	if rng.Intn(50) == 0 {
		return s.cfg.Arena.MaxAlloc.AsInt()
	}
	base := s.cfg.Cache.ValueSize.AsInt()
	return base/2 + rng.Intn(base+1)
}

func (s *Soak) key(rng *rand.Rand) string {
	return fmt.Sprintf("key:%08d", rng.Intn(s.cfg.Soak.Keys))
}

func (s *Soak) report() {
	log.Infof("soak ops:%d allocs:%d fails:%d pins:%d live:%d arena[%s] cache[%s]",
		s.ops.Load(), s.allocs.Load(), s.fails.Load(),
		s.pinCount(), s.tracker.Live(), s.arena.Stats(), s.cache.Stats())
}

func (s *Soak) pinCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pins)
}
