// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package crawl

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pedigree/pedigree/internal/pkg/logging"
	"github.com/pedigree/pedigree/pkg/limiter"
	"github.com/pedigree/pedigree/pkg/metric"
	"github.com/pedigree/pedigree/pkg/pedigree"
	"github.com/pedigree/pedigree/pkg/tree"
)

const (
	familyKind = "family"
	personKind = "person"
)

// run is the state of a single crawl, shared by all goroutines of the crawl.
type run struct {
	src     pedigree.Source
	lim     *limiter.Limiter
	tree    *tree.Tree
	errs    *Errors
	metrics *metric.Metrics
	start   time.Time

	familyFetches, personFetches, notFound, lostRaces atomic.Int64
}

func newRun(src pedigree.Source, opts Options) (*run, error) {
	lim, err := limiter.New(opts.RateLimit, opts.QPS, opts.Burst)
	if err != nil {
		return nil, err
	}
	return &run{
		src:     src,
		lim:     lim,
		tree:    tree.New(),
		errs:    NewErrors(log),
		metrics: opts.Metrics,
		start:   time.Now(),
	}, nil
}

// family fetches a family holding a limiter slot.
// Returns nil if the family is missing, the fetch failed, or ctx is done.
func (r *run) family(ctx context.Context, id pedigree.FamilyID) *pedigree.Family {
	f, _ := fetch(ctx, r, familyKind, string(id), &r.familyFetches, func(ctx context.Context) (*pedigree.Family, error) {
		return r.src.Family(ctx, id)
	})
	return f
}

// person returns the stored person if already in the tree, or fetches and inserts it.
// Returns nil if the person is missing, the fetch failed, or ctx is done.
func (r *run) person(ctx context.Context, id pedigree.PersonID) *pedigree.Person {
	if p := r.tree.Person(id); p != nil {
		return p
	}
	p, ok := fetch(ctx, r, personKind, string(id), &r.personFetches, func(ctx context.Context) (*pedigree.Person, error) {
		return r.src.Person(ctx, id)
	})
	if ok {
		r.addPerson(p)
	}
	return p
}

// addFamily inserts f, returns true if this call did the insert.
func (r *run) addFamily(f *pedigree.Family) bool {
	if r.tree.AddFamilyIfAbsent(f) {
		r.metrics.Discover(familyKind)
		return true
	}
	r.lostRaces.Add(1)
	return false
}

func (r *run) addPerson(p *pedigree.Person) bool {
	if r.tree.AddPersonIfAbsent(p) {
		r.metrics.Discover(personKind)
		return true
	}
	r.lostRaces.Add(1)
	return false
}

// fetch calls get while holding a limiter slot and classifies the outcome.
// Returns ok == false if nothing was fetched.
func fetch[T any](ctx context.Context, r *run, kind, id string, count *atomic.Int64, get func(context.Context) (T, error)) (v T, ok bool) {
	if ctx.Err() != nil {
		return v, false
	}
	start := time.Now()
	err := r.lim.Do(ctx, func() error {
		count.Add(1)
		r.metrics.SetInFlight(r.lim.InFlight())
		log.V(3).Info("Fetch", kind, id)
		var err error
		v, err = get(ctx)
		return err
	})
	switch {
	case err == nil:
		r.metrics.Fetch(kind, metric.OK, start)
		return v, true
	case pedigree.IsNotFound(err):
		r.notFound.Add(1)
		r.metrics.Fetch(kind, metric.NotFound, start)
		log.V(2).Info("Not found, branch ends", kind, id)
	case ctx.Err() != nil:
		// Cancelled, the crawl reports ctx.Err().
	default:
		r.metrics.Fetch(kind, metric.Failed, start)
		r.errs.Log(err, "Branch abandoned", kind, id)
	}
	var zero T
	return zero, false
}

// result builds the crawl result, filling in the counters of stats.
// Must only be called once the crawl is quiesced.
func (r *run) result(ctx context.Context, root pedigree.FamilyID, stats Stats) (*Result, error) {
	families, persons := r.tree.Len()
	stats.Families, stats.Persons = families, persons
	stats.FamilyFetches = int(r.familyFetches.Load())
	stats.PersonFetches = int(r.personFetches.Load())
	stats.NotFound = int(r.notFound.Load())
	stats.Abandoned = r.errs.Count()
	stats.LostRaces = int(r.lostRaces.Load())
	stats.MaxInFlight = r.lim.MaxInFlight()
	stats.Elapsed = time.Since(r.start)
	result := &Result{Root: root, Tree: r.tree, Stats: stats}
	r.metrics.SetInFlight(r.lim.InFlight())
	if err := ctx.Err(); err != nil {
		log.V(1).Info("Crawl cancelled", "root", root, "error", err.Error(), "families", families, "persons", persons)
		return result, err
	}
	log.V(1).Info("Crawl finished", "root", root, "stats", logging.JSON(result.Stats))
	return result, r.errs.Err()
}
