// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// Package config contains configuration types for pedigree.
// These types can be loaded from YAML or JSON configuration files.
package config

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pedigree/pedigree/internal/pkg/logging"
	"sigs.k8s.io/yaml"
)

var log = logging.Log()

// Environment variable naming a default configuration file.
const ConfigEnv = "PEDIGREE_CONFIG"

// Defaults for unset values.
var Defaults = Config{
	Source: Source{
		Timeout: Duration{10 * time.Second},
		Retries: 3,
		Backoff: Duration{100 * time.Millisecond},
	},
	Crawl: Crawl{
		Strategy:  "breadth-first",
		Workers:   100,
		RateLimit: 5,
	},
	Server: Server{
		Generations: 6,
		Seed:        1,
	},
}

// Configs is a map of config files by their source file/url.
type Configs map[string]*Config

// Load loads all configurations from a file or URL.
//
// If a configuration has an Include section, also loads all referenced configurations.
// Relative paths in Include are relative to the location of file containing them.
func Load(fileOrURL string) (Configs, error) {
	configs := Configs{}
	return configs, load(fileOrURL, configs)
}

// LoadMerged loads fileOrURL and its includes, and merges them with [Configs.Merge].
func LoadMerged(fileOrURL string) (*Config, error) {
	configs, err := Load(fileOrURL)
	if err != nil {
		return nil, err
	}
	return configs.Merge(fileOrURL), nil
}

// Merge returns the configuration for source with its includes merged in.
//
// Values set in a file override values from the files it includes.
// Earlier includes override later ones. Unset values are filled from [Defaults].
// Dataset paths are resolved relative to the file that names them.
func (configs Configs) Merge(source string) *Config {
	c := &Config{}
	configs.merge(source, c, map[string]bool{})
	c.Include = nil
	c.Fill(&Defaults)
	return c
}

func (configs Configs) merge(source string, into *Config, seen map[string]bool) {
	if seen[source] {
		return
	}
	seen[source] = true
	c := configs[source]
	if c == nil {
		return
	}
	resolved := *c
	if resolved.Source.Dataset != "" {
		resolved.Source.Dataset = resolve(source, resolved.Source.Dataset)
	}
	if resolved.Server.Dataset != "" {
		resolved.Server.Dataset = resolve(source, resolved.Server.Dataset)
	}
	into.Fill(&resolved)
	for _, s := range c.Include {
		configs.merge(resolve(source, s), into, seen)
	}
}

// Fill sets each unset value in c from other.
func (c *Config) Fill(other *Config) {
	fill(&c.Source.URL, other.Source.URL)
	fill(&c.Source.Dataset, other.Source.Dataset)
	fill(&c.Source.Timeout, other.Source.Timeout)
	fill(&c.Source.Retries, other.Source.Retries)
	fill(&c.Source.Backoff, other.Source.Backoff)
	fill(&c.Crawl.Strategy, other.Crawl.Strategy)
	fill(&c.Crawl.Workers, other.Crawl.Workers)
	fill(&c.Crawl.RateLimit, other.Crawl.RateLimit)
	fill(&c.Crawl.QPS, other.Crawl.QPS)
	fill(&c.Crawl.Burst, other.Crawl.Burst)
	fill(&c.Crawl.Timeout, other.Crawl.Timeout)
	fill(&c.Server.Dataset, other.Server.Dataset)
	fill(&c.Server.Generations, other.Server.Generations)
	fill(&c.Server.Seed, other.Server.Seed)
	fill(&c.Server.Latency, other.Server.Latency)
}

func fill[T comparable](v *T, other T) {
	var zero T
	if *v == zero {
		*v = other
	}
}

func load(source string, configs Configs) (err error) {
	if _, ok := configs[source]; ok {
		return nil // Already loaded
	}
	log.V(2).Info("Loading configuration", "config", source)
	b, err := readFileOrURL(source)
	if err != nil {
		return fmt.Errorf("%v: %w", source, err)
	}
	c := &Config{}
	if err := yaml.UnmarshalStrict(b, c); err != nil {
		return fmt.Errorf("%v: %w", source, err)
	}
	configs[source] = c
	for _, s := range c.Include {
		ref := resolve(source, s)
		if err := load(ref, configs); err != nil {
			return err
		}
	}
	return nil
}

func readFileOrURL(source string) ([]byte, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, err
	}
	if u.IsAbs() {
		resp, err := http.Get(u.String())
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != 200 {
			return nil, fmt.Errorf("%v", http.StatusText(resp.StatusCode))
		}
		return b, nil
	} else {
		return os.ReadFile(u.Path)
	}
}

func resolve(base, ref string) string {
	if filepath.IsAbs(ref) {
		return ref
	}
	if r, err := url.Parse(ref); err == nil {
		if r.IsAbs() {
			return ref
		}
		if b, err := url.Parse(base); err == nil && b.IsAbs() {
			return b.ResolveReference(r).String()
		}
	}
	return filepath.Join(filepath.Dir(base), ref)
}
