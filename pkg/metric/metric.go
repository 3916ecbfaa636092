// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// Package metric defines prometheus metrics for crawls and the pedigree data server.
//
// All methods are safe to call on a nil *Metrics, they do nothing.
package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pedigree"

// Fetch result label values.
const (
	OK       = "ok"
	NotFound = "not_found"
	Failed   = "error"
)

// Metrics is a set of collectors registered with a single registry.
type Metrics struct {
	Fetches     *prometheus.CounterVec   // kind, result
	Latency     *prometheus.HistogramVec // kind
	Discovered  *prometheus.CounterVec   // kind
	InFlight    prometheus.Gauge
	Outstanding prometheus.Gauge
	Requests    *prometheus.CounterVec // kind, code: server side

	registry *prometheus.Registry
}

// New creates metrics registered with a new registry.
func New() *Metrics {
	m := &Metrics{
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "crawl", Name: "fetches_total",
			Help: "Fetches from the data source by kind (family, person) and result.",
		}, []string{"kind", "result"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "crawl", Name: "fetch_seconds",
			Help:    "Fetch latency including time waiting for a rate limiter slot.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"kind"}),
		Discovered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "crawl", Name: "discovered_total",
			Help: "Nodes inserted into the tree by kind.",
		}, []string{"kind"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "crawl", Name: "in_flight",
			Help: "Fetches currently holding a rate limiter slot.",
		}),
		Outstanding: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "crawl", Name: "outstanding",
			Help: "Breadth-first work items submitted but not yet done.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "server", Name: "requests_total",
			Help: "Requests served by kind and HTTP status code.",
		}, []string{"kind", "code"}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.Fetches, m.Latency, m.Discovered, m.InFlight, m.Outstanding, m.Requests)
	return m
}

// Registry returns the registry holding these metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Fetch records a completed fetch.
func (m *Metrics) Fetch(kind, result string, start time.Time) {
	if m == nil {
		return
	}
	m.Fetches.WithLabelValues(kind, result).Inc()
	m.Latency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// Discover records a node inserted into the tree.
func (m *Metrics) Discover(kind string) {
	if m == nil {
		return
	}
	m.Discovered.WithLabelValues(kind).Inc()
}

// SetInFlight records the number of fetches in progress.
func (m *Metrics) SetInFlight(n int) {
	if m == nil {
		return
	}
	m.InFlight.Set(float64(n))
}

// SetOutstanding records the breadth-first outstanding count.
func (m *Metrics) SetOutstanding(n int) {
	if m == nil {
		return
	}
	m.Outstanding.Set(float64(n))
}

// Request records a request served by the data server.
func (m *Metrics) Request(kind string, code int) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(kind, http.StatusText(code)).Inc()
}
