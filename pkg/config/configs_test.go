// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Include(t *testing.T) {
	c, err := Load("testdata/pedigree.yaml")
	require.NoError(t, err)
	assert.Len(t, c, 3)
	assert.Equal(t, &Config{
		Server: Server{Dataset: "family.yaml", Latency: Duration{5 * time.Millisecond}},
		Crawl:  Crawl{QPS: 100},
	}, c["testdata/sub/server.json"])
	assert.Equal(t, []string{"crawl.yaml", "pedigree.yaml"}, c["testdata/pedigree.yaml"].Include)
}

func TestLoadMerged(t *testing.T) {
	c, err := LoadMerged("testdata/pedigree.yaml")
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Source: Source{
			URL:     "http://localhost:8000",
			Timeout: Duration{10 * time.Second},
			Retries: 5,
			Backoff: Duration{250 * time.Millisecond},
		},
		Crawl: Crawl{
			Strategy:  "depth-first",
			Workers:   20,
			RateLimit: 10,
			QPS:       100,
			Timeout:   Duration{30 * time.Second},
		},
		Server: Server{
			Dataset:     "testdata/sub/family.yaml",
			Generations: 6,
			Seed:        1,
			Latency:     Duration{5 * time.Millisecond},
		},
	}, c)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("testdata/bad.yaml")
	assert.ErrorContains(t, err, `unknown field "wokers"`)
	_, err = Load("testdata/nonesuch.yaml")
	assert.ErrorContains(t, err, "testdata/nonesuch.yaml")
}

func TestLoad_URL(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/config/main.yaml":
			_, _ = w.Write([]byte("include: [more.yaml]\ncrawl: {workers: 7}\n"))
		case "/config/more.yaml":
			_, _ = w.Write([]byte("crawl: {workers: 3, rateLimit: 2}\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer s.Close()
	c, err := LoadMerged(s.URL + "/config/main.yaml")
	require.NoError(t, err)
	assert.Equal(t, 7, c.Crawl.Workers)
	assert.Equal(t, 2, c.Crawl.RateLimit)

	_, err = Load(s.URL + "/config/missing.yaml")
	assert.ErrorContains(t, err, "Not Found")
}

func TestMerge_Defaults(t *testing.T) {
	c := Configs{}.Merge("none")
	assert.Equal(t, &Defaults, c)
}

func TestDuration(t *testing.T) {
	for _, x := range []struct {
		json string
		want time.Duration
	}{
		{`"1m30s"`, 90 * time.Second},
		{`2.5`, 2500 * time.Millisecond},
		{`"0s"`, 0},
	} {
		t.Run(x.json, func(t *testing.T) {
			var d Duration
			require.NoError(t, json.Unmarshal([]byte(x.json), &d))
			assert.Equal(t, x.want, d.Duration)
		})
	}
	var d Duration
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	b, err := json.Marshal(Duration{time.Minute})
	require.NoError(t, err)
	assert.Equal(t, `"1m0s"`, string(b))
}
