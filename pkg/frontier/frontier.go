// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// Package frontier is a work queue of family ids whose size is not known in advance.
//
// Termination protocol:
//
//   - Submit counts an item as outstanding before it becomes visible to consumers.
//   - A consumer calls Done for an item only after every item it submitted while
//     processing has been submitted. The outstanding count therefore cannot reach
//     zero while an item is being processed.
//   - A coordinator calls Wait, which returns once the outstanding count is zero.
//     At that point no item is queued or in progress, and nothing can submit more.
//   - The coordinator then calls Shutdown(n) to queue one stop marker per consumer.
//     Consumers stop when Next returns ok == false.
//
// Concurrency: all methods are safe for concurrent use.
package frontier

import (
	"context"
	"sync"

	"github.com/pedigree/pedigree/pkg/pedigree"
)

// Frontier is a FIFO queue of family ids with an outstanding-work count.
type Frontier struct {
	m    sync.Mutex
	cond sync.Cond // Broadcast on any change to queue, outstanding, or on context cancellation.

	// GUARDED_BY(m)
	queue []item
	// Items submitted but not yet marked done.
	// INVARIANT: outstanding >= number of non-stop items in queue.
	// GUARDED_BY(m)
	outstanding int
	// Every id ever submitted, submitting a second time is a no-op.
	// GUARDED_BY(m)
	admitted map[pedigree.FamilyID]struct{}
	// GUARDED_BY(m)
	submitted, maxQueue int
}

type item struct {
	id   pedigree.FamilyID
	stop bool
}

// New empty frontier.
func New() *Frontier {
	f := &Frontier{admitted: map[pedigree.FamilyID]struct{}{}}
	f.cond.L = &f.m
	return f
}

// Submit adds id as outstanding work.
// Returns false without queueing if id was submitted before.
func (f *Frontier) Submit(id pedigree.FamilyID) bool {
	f.m.Lock()
	defer f.m.Unlock()
	if _, ok := f.admitted[id]; ok {
		return false
	}
	f.admitted[id] = struct{}{}
	f.outstanding++
	f.submitted++
	f.push(item{id: id})
	return true
}

// Next removes and returns the next id, blocking while the queue is empty.
// Returns ok == false if the item was a shutdown marker.
// Returns ctx.Err() if ctx is done before an item is available.
func (f *Frontier) Next(ctx context.Context) (id pedigree.FamilyID, ok bool, err error) {
	stop := context.AfterFunc(ctx, f.wake)
	defer stop()

	f.m.Lock()
	defer f.m.Unlock()
	for len(f.queue) == 0 {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		f.cond.Wait()
	}
	it := f.queue[0]
	f.queue[0] = item{}
	f.queue = f.queue[1:]
	f.cond.Broadcast()
	return it.id, !it.stop, nil
}

// Done marks one previously returned id as fully processed.
// Calling Done more times than Submit panics with a [pedigree.InvariantError].
func (f *Frontier) Done() {
	f.m.Lock()
	defer f.m.Unlock()
	if f.outstanding <= 0 {
		pedigree.Invariant("frontier done called with no outstanding work")
	}
	f.outstanding--
	if f.outstanding == 0 {
		f.cond.Broadcast()
	}
}

// Wait blocks until there is no outstanding work, or ctx is done.
func (f *Frontier) Wait(ctx context.Context) error {
	stop := context.AfterFunc(ctx, f.wake)
	defer stop()

	f.m.Lock()
	defer f.m.Unlock()
	for f.outstanding > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		f.cond.Wait()
	}
	return nil
}

// Shutdown queues n stop markers, one per consumer.
// Stop markers are queued after any work already in the queue.
func (f *Frontier) Shutdown(n int) {
	f.m.Lock()
	defer f.m.Unlock()
	for range n {
		f.push(item{stop: true})
	}
}

// Outstanding is the number of submitted items not yet done.
func (f *Frontier) Outstanding() int {
	f.m.Lock()
	defer f.m.Unlock()
	return f.outstanding
}

// Stats returns the total number of ids submitted and the longest queue length seen.
func (f *Frontier) Stats() (submitted, maxQueue int) {
	f.m.Lock()
	defer f.m.Unlock()
	return f.submitted, f.maxQueue
}

// LOCKS_REQUIRED(f.m)
func (f *Frontier) push(it item) {
	f.queue = append(f.queue, it)
	f.maxQueue = max(f.maxQueue, len(f.queue))
	f.cond.Broadcast()
}

// wake all waiters so they re-check their context.
func (f *Frontier) wake() {
	f.m.Lock()
	defer f.m.Unlock()
	f.cond.Broadcast()
}
