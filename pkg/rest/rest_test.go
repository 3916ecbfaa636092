// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pedigree/pedigree/internal/pkg/test"
	"github.com/pedigree/pedigree/pkg/client"
	"github.com/pedigree/pedigree/pkg/crawl"
	"github.com/pedigree/pedigree/pkg/dataset"
	"github.com/pedigree/pedigree/pkg/metric"
	"github.com/pedigree/pedigree/pkg/pedigree"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ginEngine() *gin.Engine {
	if os.Getenv(gin.EnvGinMode) == "" { // Don't override an explicit env setting.
		gin.SetMode(gin.TestMode)
	}
	return gin.New()
}

type testAPI struct {
	*API
	Router *gin.Engine
}

func newTestAPI(t *testing.T, d *dataset.Dataset, opts Options) *testAPI {
	t.Helper()
	r := ginEngine()
	a, err := New(d, opts, r)
	require.NoError(t, err)
	return &testAPI{API: a, Router: r}
}

func do(a *testAPI, method, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, nil)
	a.Router.ServeHTTP(w, req)
	return w
}

func assertDo[T any](t *testing.T, a *testAPI, url string, code int, want T) {
	t.Helper()
	w := do(a, http.MethodGet, url)
	if assert.Equal(t, code, w.Code, w.Body.String()) {
		var got T
		if assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got), "body: %v", w.Body.String()) {
			assert.JSONEq(t, test.JSONPretty(want), test.JSONPretty(got))
		}
	}
}

func small(t *testing.T) *dataset.Dataset {
	t.Helper()
	d, err := dataset.Load("../dataset/testdata/small.yaml")
	require.NoError(t, err)
	return d
}

func TestAPI_Family(t *testing.T) {
	a := newTestAPI(t, small(t), Options{})
	assertDo(t, a, "/family/F0", http.StatusOK, pedigree.Family{ID: "F0", Husband: "P1", Wife: "P2", Children: []pedigree.PersonID{"P3", "P4"}})
	assertDo(t, a, "/family/F9", http.StatusNotFound, Error{Error: `family not found: "F9"`})
}

func TestAPI_Person(t *testing.T) {
	a := newTestAPI(t, small(t), Options{})
	assertDo(t, a, "/person/P1", http.StatusOK, pedigree.Person{ID: "P1", Name: "John Doe", Birth: "1950", ParentFamily: "F1", Family: "F0"})
	assertDo(t, a, "/person/P9", http.StatusNotFound, Error{Error: `person not found: "P9"`})
}

func TestAPI_Tree(t *testing.T) {
	a := newTestAPI(t, small(t), Options{})
	assertDo(t, a, "/tree", http.StatusOK, Tree{Root: "F0", Families: 2, Persons: 4})
	w := do(a, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_Metrics(t *testing.T) {
	m := metric.New()
	a := newTestAPI(t, small(t), Options{Metrics: m})
	do(a, http.MethodGet, "/family/F0")
	do(a, http.MethodGet, "/family/F9")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("family", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("family", "Not Found")))
	w := do(a, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "pedigree_server_requests_total"))
}

func TestAPI_Latency(t *testing.T) {
	a := newTestAPI(t, small(t), Options{Latency: 20 * time.Millisecond})
	start := time.Now()
	w := do(a, http.MethodGet, "/person/P2")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

// Crawl a generated dataset through the HTTP client.
func TestAPI_Crawl(t *testing.T) {
	d := dataset.Generate(5, 1)
	a := newTestAPI(t, d, Options{Latency: time.Millisecond})
	s := httptest.NewServer(a.Router)
	defer s.Close()
	c, err := client.New(s.URL, client.Options{})
	require.NoError(t, err)

	families, persons := d.Len()
	for _, strategy := range crawl.Strategies() {
		t.Run(strategy, func(t *testing.T) {
			cr, err := crawl.New(crawl.Strategy(strategy), c, crawl.Options{Workers: 10, RateLimit: 5})
			require.NoError(t, err)
			r, err := cr.Crawl(context.Background(), d.Root)
			require.NoError(t, err)
			assert.Equal(t, families, r.Stats.Families)
			assert.Equal(t, persons, r.Stats.Persons)
			assert.LessOrEqual(t, r.Stats.MaxInFlight, 5)
		})
	}
}
