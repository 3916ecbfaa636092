// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package crawl

import (
	"context"
	"sync"

	"github.com/pedigree/pedigree/pkg/frontier"
	"github.com/pedigree/pedigree/pkg/pedigree"
	"golang.org/x/sync/errgroup"
)

type breadthFirst struct {
	src  pedigree.Source
	opts Options
}

// NewBreadthFirst returns a Crawler with a fixed pool of opts.Workers workers.
func NewBreadthFirst(src pedigree.Source, opts Options) (Crawler, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	return &breadthFirst{src: src, opts: opts}, nil
}

func (b *breadthFirst) Crawl(ctx context.Context, root pedigree.FamilyID) (*Result, error) {
	r, err := newRun(b.src, b.opts)
	if err != nil {
		return nil, err
	}
	workers := b.opts.Workers
	log.V(1).Info("Crawl breadth-first", "root", root, "workers", workers, "rateLimit", b.opts.RateLimit)

	fr := frontier.New()
	fr.Submit(root)
	g, gctx := errgroup.WithContext(ctx)
	for n := range workers {
		g.Go(func() error { return r.work(gctx, fr, n) })
	}
	// Coordinator: once nothing is outstanding, nothing can submit more work.
	if err := fr.Wait(ctx); err == nil {
		fr.Shutdown(workers)
	}
	_ = g.Wait() // Workers only fail if ctx is done, reported below.

	submitted, maxQueue := fr.Stats()
	return r.result(ctx, root, Stats{
		Strategy:  BreadthFirstStrategy,
		Workers:   workers,
		Submitted: submitted,
		MaxQueue:  maxQueue,
	})
}

// work is a worker loop, it returns on a shutdown marker or when ctx is done.
func (r *run) work(ctx context.Context, fr *frontier.Frontier, n int) error {
	for {
		id, ok, err := fr.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			log.V(4).Info("Worker stopped", "worker", n)
			return nil
		}
		r.visit(ctx, fr, id)
	}
}

// visit expands one family taken from the frontier.
// Done is called only after every parent family found here has been submitted.
func (r *run) visit(ctx context.Context, fr *frontier.Frontier, id pedigree.FamilyID) {
	defer func() {
		fr.Done()
		r.metrics.SetOutstanding(fr.Outstanding())
	}()
	f := r.family(ctx, id)
	if f == nil || !r.addFamily(f) || f.IsLeaf() {
		return
	}
	log.V(2).Info("Expand family", "family", id, "members", len(f.Members()))

	var busy sync.WaitGroup
	for _, pid := range f.Spouses() {
		busy.Add(1)
		go func() {
			defer busy.Done()
			if p := r.person(ctx, pid); p != nil && p.ParentFamily != "" && !r.tree.HasFamily(p.ParentFamily) {
				if fr.Submit(p.ParentFamily) {
					r.metrics.SetOutstanding(fr.Outstanding())
				}
			}
		}()
	}
	for _, pid := range f.Children {
		busy.Add(1)
		go func() {
			defer busy.Done()
			_ = r.person(ctx, pid)
		}()
	}
	busy.Wait()
}
