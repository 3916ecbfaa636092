// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// Package limiter bounds the number of concurrent outbound fetches.
//
// A [Limiter] is a counting gate with a fixed capacity, optionally combined with
// a token bucket that paces the rate at which slots are granted.
package limiter

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pedigree/pedigree/pkg/pedigree"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Limiter caps in-flight operations at Capacity.
// Safe for concurrent use by any number of goroutines.
type Limiter struct {
	capacity int64
	sem      *semaphore.Weighted
	pace     *rate.Limiter // nil if not pacing

	m        sync.Mutex
	inFlight int64 // GUARDED_BY(m)
	max      int64 // GUARDED_BY(m)

	acquired atomic.Int64
}

// New returns a limiter allowing capacity concurrent holders.
// If qps > 0, slots are also granted no faster than qps per second with the given burst.
func New(capacity int, qps float64, burst int) (*Limiter, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("rate limit capacity must be at least 1, got %v", capacity)
	}
	l := &Limiter{capacity: int64(capacity), sem: semaphore.NewWeighted(int64(capacity))}
	if qps > 0 {
		if burst < 1 {
			burst = 1
		}
		l.pace = rate.NewLimiter(rate.Limit(qps), burst)
	}
	return l, nil
}

// Acquire blocks until a slot is free or ctx is done.
// On success the caller must call Release exactly once.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	if l.pace != nil {
		if err := l.pace.Wait(ctx); err != nil {
			l.sem.Release(1)
			return err
		}
	}
	l.m.Lock()
	l.inFlight++
	l.max = max(l.max, l.inFlight)
	l.m.Unlock()
	l.acquired.Add(1)
	return nil
}

// Release frees a slot. It never blocks.
// Releasing when no slot is held panics with a [pedigree.InvariantError].
// A stray release while other slots are held is not detected.
func (l *Limiter) Release() {
	l.m.Lock()
	if l.inFlight <= 0 {
		l.m.Unlock()
		pedigree.Invariant("limiter released without matching acquire")
	}
	l.inFlight--
	l.m.Unlock()
	l.sem.Release(1)
}

// Do runs f holding a slot, the slot is released when f returns or panics.
func (l *Limiter) Do(ctx context.Context, f func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return f()
}

// Capacity is the maximum number of concurrent holders.
func (l *Limiter) Capacity() int { return int(l.capacity) }

// InFlight is the number of slots currently held.
func (l *Limiter) InFlight() int {
	l.m.Lock()
	defer l.m.Unlock()
	return int(l.inFlight)
}

// MaxInFlight is the highest number of slots held at the same time.
func (l *Limiter) MaxInFlight() int {
	l.m.Lock()
	defer l.m.Unlock()
	return int(l.max)
}

// Acquired is the total number of successful Acquire calls.
func (l *Limiter) Acquired() int { return int(l.acquired.Load()) }
