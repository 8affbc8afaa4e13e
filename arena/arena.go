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

// Package arena allocates reference-counted buffers out of anonymous
// mappings, off the Go heap. Buffers of common sizes come from per-class
// freelists carved out of shared chunks; oversized buffers get a mapping of
// their own, unmapped when the last reference drops.
package arena

import (
	"fmt"
	"os"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/zuoyebang/refcnt"
	"github.com/zuoyebang/refcnt/internal/units"
	"github.com/zuoyebang/refcnt/leakcheck"
)

const (
	numClasses   = 12
	minClassSize = 16
	maxClassSize = minClassSize << (numClasses - 1)

	defaultChunkSize = 1 << 20
	minChunkSize     = 64 << 10
)

var (
	ErrClosed  = errors.New("arena: closed")
	ErrBadSize = errors.New("arena: invalid buffer size")
	ErrBusy    = errors.New("arena: live buffers remain")
)

type Option func(a *Arena)

func WithChunkSize(size int) Option {
	return func(a *Arena) {
		a.chunkSize = size
	}
}

func WithTracker(tracker *leakcheck.Tracker) Option {
	return func(a *Arena) {
		a.tracker = tracker
	}
}

type Arena struct {
	chunkSize int
	tracker   *leakcheck.Tracker

	mu        sync.Mutex
	closed    bool
	chunks    [][]byte
	cur       []byte
	curOff    int
	freelists [numClasses][][]byte

	liveBufs int
	mapped   uint64
	inuse    uint64
	reuses   uint64
	larges   uint64
}

func NewArena(ops ...Option) *Arena {
	a := &Arena{chunkSize: defaultChunkSize}
	for _, op := range ops {
		op(a)
	}

	if a.chunkSize < minChunkSize {
		a.chunkSize = minChunkSize
	}
	a.chunkSize = pageAlign(a.chunkSize)
	return a
}

func classFor(size int) int {
	if size <= 128 {
		switch {
		case size <= 16:
			return 0
		case size <= 32:
			return 1
		case size <= 64:
			return 2
		default:
			return 3
		}
	} else if size <= 2048 {
		switch {
		case size <= 256:
			return 4
		case size <= 512:
			return 5
		case size <= 1024:
			return 6
		default:
			return 7
		}
	}
	switch {
	case size <= 4096:
		return 8
	case size <= 8192:
		return 9
	case size <= 16384:
		return 10
	case size <= maxClassSize:
		return 11
	default:
		return -1
	}
}

func classSize(class int) int {
	return minClassSize << class
}

func pageAlign(n int) int {
	page := os.Getpagesize()
	return (n + page - 1) &^ (page - 1)
}

// Alloc returns a buffer of the given size with a zero reference count; the
// caller adopts it, usually via refcnt.NewRef.
func (a *Arena) Alloc(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrBadSize, "size %d", size)
	}

	b := &Buffer{arena: a, class: classFor(size)}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil, ErrClosed
	}

	var err error
	if b.class < 0 {
		if b.slot, err = mapAnon(pageAlign(size)); err != nil {
			a.mu.Unlock()
			return nil, errors.Wrapf(err, "arena: map %d byte buffer", size)
		}
		a.mapped += uint64(len(b.slot))
		a.larges++
	} else if b.slot = a.popFreeLocked(b.class); b.slot == nil {
		if b.slot, err = a.carveLocked(classSize(b.class)); err != nil {
			a.mu.Unlock()
			return nil, err
		}
	}
	a.liveBufs++
	a.inuse += uint64(len(b.slot))
	a.mu.Unlock()

	b.data = b.slot[:size]
	b.tid = a.tracker.Track("arena.buffer")
	return b, nil
}

// AllocRef is Alloc plus adoption into an owning handle.
func (a *Arena) AllocRef(size int) (refcnt.Ref[*Buffer], error) {
	b, err := a.Alloc(size)
	if err != nil {
		return refcnt.Ref[*Buffer]{}, err
	}
	return refcnt.NewRef(b), nil
}

func (a *Arena) popFreeLocked(class int) []byte {
	fl := a.freelists[class]
	if n := len(fl); n > 0 {
		slot := fl[n-1]
		a.freelists[class] = fl[:n-1]
		a.reuses++
		return slot
	}
	return nil
}

func (a *Arena) carveLocked(size int) ([]byte, error) {
	if len(a.cur)-a.curOff < size {
		chunk, err := mapAnon(a.chunkSize)
		if err != nil {
			return nil, errors.Wrap(err, "arena: map chunk")
		}
		a.chunks = append(a.chunks, chunk)
		a.cur = chunk
		a.curOff = 0
		a.mapped += uint64(len(chunk))
	}

	slot := a.cur[a.curOff : a.curOff+size : a.curOff+size]
	a.curOff += size
	return slot, nil
}

func (a *Arena) reclaim(b *Buffer) {
	a.tracker.Untrack(b.tid)

	a.mu.Lock()
	a.liveBufs--
	a.inuse -= uint64(len(b.slot))
	if b.class < 0 {
		a.mapped -= uint64(len(b.slot))
		if err := unmapAnon(b.slot); err != nil {
			a.mu.Unlock()
			panic(errors.Wrap(err, "arena: unmap buffer"))
		}
	} else {
		a.freelists[b.class] = append(a.freelists[b.class], b.slot)
	}
	a.mu.Unlock()

	b.data = nil
	b.slot = nil
	b.arena = nil
}

// Close unmaps the arena's chunks. It fails while buffers are live: their
// memory sits inside the chunks being unmapped.
func (a *Arena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	if a.liveBufs > 0 {
		return errors.Wrapf(ErrBusy, "%d buffer(s)", a.liveBufs)
	}

	a.closed = true
	for i := range a.freelists {
		a.freelists[i] = nil
	}
	a.cur = nil
	a.curOff = 0
	for _, chunk := range a.chunks {
		if err := unmapAnon(chunk); err != nil {
			return errors.Wrap(err, "arena: unmap chunk")
		}
	}
	a.chunks = nil
	a.mapped = 0
	return nil
}

type Stats struct {
	Chunks int
	Mapped uint64
	Inuse  uint64
	Live   int
	Reuses uint64
	Larges uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("chunks:%d mapped:%s inuse:%s live:%d reuses:%d larges:%d",
		s.Chunks, units.FmtBytes(s.Mapped), units.FmtBytes(s.Inuse), s.Live, s.Reuses, s.Larges)
}

func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	return Stats{
		Chunks: len(a.chunks),
		Mapped: a.mapped,
		Inuse:  a.inuse,
		Live:   a.liveBufs,
		Reuses: a.reuses,
		Larges: a.larges,
	}
}
