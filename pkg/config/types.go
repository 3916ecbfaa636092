// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package config

// Config is the configuration for pedigree commands.
// Configuration files may be JSON or YAML.
//
// Zero values are unset: they are filled from included files, then from defaults.
type Config struct {
	// Source is the data source to crawl.
	Source Source `json:"source,omitzero"`

	// Crawl options.
	Crawl Crawl `json:"crawl,omitzero"`

	// Server options for the pedigree data server.
	Server Server `json:"server,omitzero"`

	// Include lists additional configuration files or URLs to include.
	// The including file takes precedence over the files it includes.
	Include []string `json:"include,omitempty"`
}

// Source of pedigree data, one of URL or Dataset.
type Source struct {
	// URL of a pedigree data server.
	URL string `json:"url,omitempty"`
	// Dataset file to crawl in memory, relative to the configuration file.
	Dataset string `json:"dataset,omitempty"`
	// Timeout for one HTTP request.
	Timeout Duration `json:"timeout,omitzero"`
	// Retries for a request that fails with a retryable error.
	Retries int `json:"retries,omitempty"`
	// Backoff before the first retry, doubled for further retries.
	Backoff Duration `json:"backoff,omitzero"`
}

// Crawl options.
type Crawl struct {
	// Strategy is "depth-first" or "breadth-first".
	Strategy string `json:"strategy,omitempty"`
	// Workers for breadth-first crawls.
	Workers int `json:"workers,omitempty"`
	// RateLimit is the maximum number of concurrent fetches.
	RateLimit int `json:"rateLimit,omitempty"`
	// QPS limits the rate of fetches per second, if non-zero.
	QPS float64 `json:"qps,omitempty"`
	// Burst allowed above QPS.
	Burst int `json:"burst,omitempty"`
	// Timeout for a whole crawl, if non-zero.
	Timeout Duration `json:"timeout,omitzero"`
}

// Server options.
type Server struct {
	// Dataset file to serve, relative to the configuration file.
	Dataset string `json:"dataset,omitempty"`
	// Generations to generate if there is no dataset.
	Generations int `json:"generations,omitempty"`
	// Seed for generating a dataset.
	Seed uint64 `json:"seed,omitempty"`
	// Latency added to each request.
	Latency Duration `json:"latency,omitzero"`
}
