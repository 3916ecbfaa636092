// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// Package rest is the pedigree data server, it serves a [dataset.Dataset] over HTTP.
//
// Endpoints:
//
//	GET /family/:id  family record as JSON, 404 if missing.
//	GET /person/:id  person record as JSON, 404 if missing.
//	GET /tree        summary of the dataset: root family and counts.
//	GET /healthz     200 OK.
//	GET /metrics     prometheus metrics, if enabled.
//
// A per-request latency can be configured to simulate a slow remote server.
package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pedigree/pedigree/internal/pkg/logging"
	"github.com/pedigree/pedigree/pkg/dataset"
	"github.com/pedigree/pedigree/pkg/metric"
	"github.com/pedigree/pedigree/pkg/pedigree"
)

var log = logging.Log()

// Options for the API.
type Options struct {
	// Latency added to each family or person request.
	Latency time.Duration
	// Metrics to update and serve on /metrics, optional.
	Metrics *metric.Metrics
}

// API serves a dataset.
type API struct {
	Dataset *dataset.Dataset
	Options
}

// Tree summarizes the served dataset.
type Tree struct {
	Root     pedigree.FamilyID `json:"root"`
	Families int               `json:"families"`
	Persons  int               `json:"persons"`
}

// Error response body.
type Error struct {
	Error string `json:"error"`
}

// New API instance, registers handlers with a gin Engine.
func New(d *dataset.Dataset, opts Options, r *gin.Engine) (*API, error) {
	a := &API{Dataset: d, Options: opts}
	r.Use(a.logger)
	r.GET("/family/:id", a.Family)
	r.GET("/person/:id", a.Person)
	r.GET("/tree", a.Tree)
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	return a, nil
}

// Family handler.
func (a *API) Family(c *gin.Context) {
	if !a.delay(c) {
		return
	}
	f, err := a.Dataset.Family(c.Request.Context(), pedigree.FamilyID(c.Param("id")))
	a.respond(c, "family", f, err)
}

// Person handler.
func (a *API) Person(c *gin.Context) {
	if !a.delay(c) {
		return
	}
	p, err := a.Dataset.Person(c.Request.Context(), pedigree.PersonID(c.Param("id")))
	a.respond(c, "person", p, err)
}

// Tree handler.
func (a *API) Tree(c *gin.Context) {
	families, persons := a.Dataset.Len()
	c.JSON(http.StatusOK, Tree{Root: a.Dataset.Root, Families: families, Persons: persons})
}

func (a *API) respond(c *gin.Context, kind string, v any, err error) {
	code := http.StatusOK
	switch {
	case err == nil:
		c.JSON(code, v)
	case pedigree.IsNotFound(err):
		code = http.StatusNotFound
		c.AbortWithStatusJSON(code, Error{Error: err.Error()})
	default:
		code = http.StatusServiceUnavailable
		log.Error(err, "abort request", "url", c.Request.URL, "code", code)
		c.AbortWithStatusJSON(code, Error{Error: err.Error()})
	}
	a.Metrics.Request(kind, code)
}

// delay the response by the configured latency, returns false if the request was cancelled.
func (a *API) delay(c *gin.Context) bool {
	if a.Latency <= 0 {
		return true
	}
	select {
	case <-time.After(a.Latency):
		return true
	case <-c.Request.Context().Done():
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return false
	}
}
