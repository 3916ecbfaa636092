// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package crawl

import (
	"context"
	"sync"

	"github.com/pedigree/pedigree/pkg/pedigree"
)

type depthFirst struct {
	src  pedigree.Source
	opts Options
}

// NewDepthFirst returns a Crawler that starts a goroutine per family member.
//
// Goroutines are not bounded, fetches are bounded by opts.RateLimit.
func NewDepthFirst(src pedigree.Source, opts Options) (Crawler, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	return &depthFirst{src: src, opts: opts}, nil
}

func (d *depthFirst) Crawl(ctx context.Context, root pedigree.FamilyID) (*Result, error) {
	r, err := newRun(d.src, d.opts)
	if err != nil {
		return nil, err
	}
	log.V(1).Info("Crawl depth-first", "root", root, "rateLimit", d.opts.RateLimit)
	r.expand(ctx, root)
	return r.result(ctx, root, Stats{Strategy: DepthFirstStrategy})
}

// expand fetches family id and resolves all of its ancestry before returning.
//
// Members are expanded whether or not this call won the insert race,
// a concurrent winner may not have reached them yet.
// Parent families already in the tree are never expanded again.
func (r *run) expand(ctx context.Context, id pedigree.FamilyID) {
	f := r.family(ctx, id)
	if f == nil {
		return
	}
	r.addFamily(f)
	if f.IsLeaf() {
		return
	}
	log.V(2).Info("Expand family", "family", id, "members", len(f.Members()))

	var busy sync.WaitGroup
	defer busy.Wait()
	for _, pid := range f.Spouses() {
		busy.Add(1)
		go func() {
			defer busy.Done()
			if p := r.person(ctx, pid); p != nil && p.ParentFamily != "" && !r.tree.HasFamily(p.ParentFamily) {
				r.expand(ctx, p.ParentFamily)
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
}
