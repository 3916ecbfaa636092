// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package main

import (
	"context"
	"errors"

	"github.com/pedigree/pedigree/internal/pkg/enumflag"
	"github.com/pedigree/pedigree/internal/pkg/must"
	"github.com/pedigree/pedigree/pkg/client"
	"github.com/pedigree/pedigree/pkg/config"
	"github.com/pedigree/pedigree/pkg/crawl"
	"github.com/pedigree/pedigree/pkg/dataset"
	"github.com/pedigree/pedigree/pkg/pedigree"
	"github.com/spf13/cobra"
)

// addSourceFlags adds flags to select the data source.
// Flags override values from the configuration file.
func addSourceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("url", "u", "", "URL of a pedigree data server")
	f.StringP("dataset", "d", "", "Dataset file (YAML or JSON) to crawl in memory")
	f.Int("generate", 0, "Crawl a generated in-memory dataset with this many generations")
	f.Uint64("seed", config.Defaults.Server.Seed, "Random seed for --generate")
	f.Duration("request-timeout", config.Defaults.Source.Timeout.Duration, "Timeout for a single request to the data server")
	f.Int("retries", config.Defaults.Source.Retries, "Retries for a failed request to the data server, negative for none")
}

// addCrawlFlags adds flags for crawl options.
func addCrawlFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	strategy := enumflag.New(string(crawl.BreadthFirstStrategy), crawl.Strategies())
	f.VarP(strategy, "strategy", "s", strategy.DocString("Crawl strategy"))
	f.IntP("workers", "w", crawl.DefaultWorkers, "Number of workers for a breadth-first crawl")
	f.IntP("rate-limit", "r", crawl.DefaultRateLimit, "Maximum number of concurrent fetches")
	f.Float64("qps", 0, "Maximum fetches per second, 0 for no limit")
	f.Int("burst", 0, "Fetches allowed in a burst above --qps")
	f.Duration("timeout", 0, "Timeout for the whole crawl, 0 for none")
}

// newConfig loads the --config file if there is one, and applies flags that were set.
func newConfig(cmd *cobra.Command) *config.Config {
	c := &config.Config{}
	if *configFlag != "" {
		c = must.Must1(config.LoadMerged(*configFlag))
		log.V(1).Info("Loaded configuration", "config", *configFlag)
	} else {
		c.Fill(&config.Defaults)
	}
	f := cmd.Flags()
	override(cmd, "url", &c.Source.URL, f.GetString)
	override(cmd, "dataset", &c.Source.Dataset, f.GetString)
	override(cmd, "seed", &c.Server.Seed, f.GetUint64)
	override(cmd, "request-timeout", &c.Source.Timeout.Duration, f.GetDuration)
	override(cmd, "retries", &c.Source.Retries, f.GetInt)
	override(cmd, "strategy", &c.Crawl.Strategy, f.GetString)
	override(cmd, "workers", &c.Crawl.Workers, f.GetInt)
	override(cmd, "rate-limit", &c.Crawl.RateLimit, f.GetInt)
	override(cmd, "qps", &c.Crawl.QPS, f.GetFloat64)
	override(cmd, "burst", &c.Crawl.Burst, f.GetInt)
	override(cmd, "timeout", &c.Crawl.Timeout.Duration, f.GetDuration)
	switch { // A source flag replaces any source from the configuration.
	case changed(cmd, "url"):
		c.Source.Dataset = ""
	case changed(cmd, "dataset"):
		c.Source.URL = ""
	}
	log.V(3).Info("Configuration", "config", c)
	return c
}

func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func override[T any](cmd *cobra.Command, name string, v *T, get func(string) (T, error)) {
	if changed(cmd, name) {
		*v = must.Must1(get(name))
	}
}

// newSource returns the data source selected by flags and configuration.
func newSource(cmd *cobra.Command, c *config.Config) pedigree.Source {
	if n := must.Must1(cmd.Flags().GetInt("generate")); n > 0 {
		log.V(1).Info("Generated dataset", "generations", n, "seed", c.Server.Seed)
		return dataset.Generate(n, c.Server.Seed)
	}
	switch {
	case c.Source.URL != "":
		log.V(1).Info("Data server", "url", c.Source.URL)
		return must.Must1(client.New(c.Source.URL, client.Options{
			Timeout: c.Source.Timeout.Duration,
			Retries: c.Source.Retries,
			Backoff: c.Source.Backoff.Duration,
		}))
	case c.Source.Dataset != "":
		log.V(1).Info("Dataset", "file", c.Source.Dataset)
		return must.Must1(dataset.Load(c.Source.Dataset))
	default:
		panic(errors.New("no pedigree source: use --url, --dataset, --generate or a configuration file"))
	}
}

// rootID is the root family from args, or the root of an in-memory dataset.
func rootID(args []string, src pedigree.Source) pedigree.FamilyID {
	if len(args) > 0 {
		return pedigree.FamilyID(args[0])
	}
	if d, ok := src.(*dataset.Dataset); ok && d.Root != "" {
		return d.Root
	}
	panic(errors.New("missing root family ID"))
}

func crawlOptions(c *config.Config) crawl.Options {
	return crawl.Options{
		RateLimit: c.Crawl.RateLimit,
		QPS:       c.Crawl.QPS,
		Burst:     c.Crawl.Burst,
		Workers:   c.Crawl.Workers,
	}
}

// runCrawl crawls from the root family named by args.
// The result is never nil, the error is the crawl error.
func runCrawl(cmd *cobra.Command, args []string) (*crawl.Result, error) {
	c := newConfig(cmd)
	src := newSource(cmd, c)
	root := rootID(args, src)
	crawler := must.Must1(crawl.New(crawl.Strategy(c.Crawl.Strategy), src, crawlOptions(c)))
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if d := c.Crawl.Timeout.Duration; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	defer StartProfile().Stop()
	return crawler.Crawl(ctx, root)
}
