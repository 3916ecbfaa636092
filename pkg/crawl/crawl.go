// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// Package crawl copies the ancestor graph reachable from a root family into a [tree.Tree].
//
// Two strategies are provided:
//
//   - Depth-first starts a goroutine per family member and joins them before returning,
//     so a family's whole ancestry is resolved when its expansion returns.
//   - Breadth-first runs a fixed pool of workers draining a [frontier.Frontier].
//
// Both strategies bound concurrent fetches from the [pedigree.Source] with a [limiter.Limiter].
// Families are inserted with [tree.Tree.AddFamilyIfAbsent], the tree is the only authority
// on whether a node has been seen.
//
// A missing family or person ends that branch quietly.
// Any other fetch error abandons the branch, is logged once, and is reported as a [PartialError]
// after the crawl. Abandoned branches never stop their siblings.
package crawl

import (
	"context"
	"fmt"
	"time"

	"github.com/pedigree/pedigree/internal/pkg/logging"
	"github.com/pedigree/pedigree/pkg/metric"
	"github.com/pedigree/pedigree/pkg/pedigree"
	"github.com/pedigree/pedigree/pkg/tree"
)

var log = logging.Log()

// Strategy names a traversal order.
type Strategy string

const (
	DepthFirstStrategy   Strategy = "depth-first"
	BreadthFirstStrategy Strategy = "breadth-first"
)

// Strategies lists the valid strategy names.
func Strategies() []string { return []string{string(DepthFirstStrategy), string(BreadthFirstStrategy)} }

const (
	DefaultWorkers   = 100
	DefaultRateLimit = 5
)

// Options for a crawl. The zero value uses defaults.
type Options struct {
	// RateLimit is the maximum number of concurrent fetches, default [DefaultRateLimit].
	RateLimit int
	// QPS paces fetches to at most QPS per second if > 0.
	QPS float64
	// Burst allowed above QPS pacing.
	Burst int
	// Workers in the breadth-first pool, default [DefaultWorkers]. Ignored by depth-first.
	Workers int
	// Metrics is optional.
	Metrics *metric.Metrics
}

func (o Options) withDefaults() (Options, error) {
	if o.RateLimit == 0 {
		o.RateLimit = DefaultRateLimit
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.RateLimit < 1 {
		return o, fmt.Errorf("rate limit must be at least 1, got %v", o.RateLimit)
	}
	if o.Workers < 0 {
		return o, fmt.Errorf("workers must be at least 1, got %v", o.Workers)
	}
	return o, nil
}

// Stats describes a finished crawl.
type Stats struct {
	Strategy      Strategy      `json:"strategy"`
	Families      int           `json:"families"`
	Persons       int           `json:"persons"`
	FamilyFetches int           `json:"familyFetches"`
	PersonFetches int           `json:"personFetches"`
	NotFound      int           `json:"notFound"`
	Abandoned     int           `json:"abandoned"`
	LostRaces     int           `json:"lostRaces"`
	MaxInFlight   int           `json:"maxInFlight"`
	Workers       int           `json:"workers,omitempty"`
	Submitted     int           `json:"submitted,omitempty"`
	MaxQueue      int           `json:"maxQueue,omitempty"`
	Elapsed       time.Duration `json:"elapsed"`
}

// Result of a crawl.
type Result struct {
	Root  pedigree.FamilyID `json:"root"`
	Tree  *tree.Tree        `json:"-"`
	Stats Stats             `json:"stats"`
}

// Crawler copies the ancestry of a root family.
type Crawler interface {
	// Crawl returns once the crawl is quiesced: no fetch is in flight and no work is pending.
	//
	// The returned Result is never nil, it holds whatever was found.
	// The error is ctx.Err() if the crawl was cancelled, a *PartialError if branches
	// were abandoned, nil otherwise.
	Crawl(ctx context.Context, root pedigree.FamilyID) (*Result, error)
}

// New returns a Crawler for the named strategy.
func New(s Strategy, src pedigree.Source, opts Options) (Crawler, error) {
	switch s {
	case DepthFirstStrategy:
		return NewDepthFirst(src, opts)
	case BreadthFirstStrategy:
		return NewBreadthFirst(src, opts)
	default:
		return nil, fmt.Errorf("unknown crawl strategy %q, expected one of %v", s, Strategies())
	}
}

// DepthFirst crawls from root with the depth-first strategy.
func DepthFirst(ctx context.Context, src pedigree.Source, root pedigree.FamilyID, opts Options) (*Result, error) {
	c, err := NewDepthFirst(src, opts)
	if err != nil {
		return nil, err
	}
	return c.Crawl(ctx, root)
}

// BreadthFirst crawls from root with a pool of workers and at most rateLimit concurrent fetches.
func BreadthFirst(ctx context.Context, src pedigree.Source, root pedigree.FamilyID, workers, rateLimit int, opts Options) (*Result, error) {
	opts.Workers, opts.RateLimit = workers, rateLimit
	c, err := NewBreadthFirst(src, opts)
	if err != nil {
		return nil, err
	}
	return c.Crawl(ctx, root)
}
