// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// Package client is a [pedigree.Source] that fetches from a pedigree data server over HTTP.
//
// The server provides:
//
//	GET <base>/family/<id>  returns a JSON family record, 404 if missing.
//	GET <base>/person/<id>  returns a JSON person record, 404 if missing.
//
// Failures other than 404 are returned as [*pedigree.TransportError].
// Retryable failures are retried with exponential backoff before giving up.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pedigree/pedigree/internal/pkg/logging"
	"github.com/pedigree/pedigree/pkg/pedigree"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/util/retry"
)

var log = logging.Log()

var _ pedigree.Source = &Client{}

const (
	DefaultTimeout = 10 * time.Second
	DefaultRetries = 3
	DefaultBackoff = 100 * time.Millisecond
)

// Options for a client, zero values use defaults.
type Options struct {
	// HTTPClient to use, default is a client with Timeout.
	HTTPClient *http.Client
	// Timeout for a single request if HTTPClient is nil.
	Timeout time.Duration
	// Retries is the number of times a retryable request is repeated. Negative means no retries.
	Retries int
	// Backoff is the delay before the first retry, doubled for each further retry.
	Backoff time.Duration
}

// Client fetches families and persons from a data server. Safe for concurrent use.
type Client struct {
	base    *url.URL
	hc      *http.Client
	backoff wait.Backoff
}

// New returns a client for a data server at base URL.
func New(base string, opts Options) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid data server URL, expected http or https: %q", base)
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Retries == 0 {
		opts.Retries = DefaultRetries
	}
	if opts.Backoff == 0 {
		opts.Backoff = DefaultBackoff
	}
	return &Client{
		base: u,
		hc:   opts.HTTPClient,
		backoff: wait.Backoff{
			Steps:    max(opts.Retries, 0) + 1,
			Duration: opts.Backoff,
			Factor:   2,
			Jitter:   0.1,
		},
	}, nil
}

// URL of the data server.
func (c *Client) URL() *url.URL { return c.base }

func (c *Client) Family(ctx context.Context, id pedigree.FamilyID) (*pedigree.Family, error) {
	f := &pedigree.Family{}
	if err := c.get(ctx, "family", string(id), f); err != nil {
		return nil, err
	}
	if f.ID == "" {
		return nil, pedigree.FamilyNotFound(id)
	}
	return f, nil
}

func (c *Client) Person(ctx context.Context, id pedigree.PersonID) (*pedigree.Person, error) {
	p := &pedigree.Person{}
	if err := c.get(ctx, "person", string(id), p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, pedigree.PersonNotFound(id)
	}
	return p, nil
}

// get a record, retrying retryable failures.
func (c *Client) get(ctx context.Context, kind, id string, body any) error {
	u := c.base.JoinPath(kind, id)
	attempt := 0
	var last error
	err := retry.OnError(c.backoff, pedigree.IsRetryable, func() error {
		if last = ctx.Err(); last != nil {
			return last
		}
		attempt++
		last = c.do(ctx, u, kind, id, body)
		if attempt > 1 || pedigree.IsRetryable(last) {
			log.V(2).Info("Request attempt", "url", u.String(), "attempt", attempt, "error", errString(last))
		}
		return last
	})
	// OnError returns the last retryable error, possibly nil, when fn fails with a context error.
	// The error from the final attempt is the one to report.
	if last == nil {
		return err
	}
	return last
}

func (c *Client) do(ctx context.Context, u *url.URL, kind, id string, body any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	log.V(4).Info("Request", "url", u.String())
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &pedigree.TransportError{Request: "GET " + u.String(), Retryable: true, Err: err}
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return &pedigree.NotFoundError{Kind: kind, ID: id}
	case resp.StatusCode/100 != 2:
		err := errors.New(resp.Status)
		if b, rerr := io.ReadAll(io.LimitReader(resp.Body, 1024)); rerr == nil && len(b) > 0 {
			err = fmt.Errorf("%v: %v", resp.Status, string(b))
		}
		return &pedigree.TransportError{Request: "GET " + u.String(), Retryable: retryable(resp.StatusCode), Err: err}
	}
	if err := json.NewDecoder(resp.Body).Decode(body); err != nil {
		return &pedigree.TransportError{Request: "GET " + u.String(), Err: fmt.Errorf("invalid response: %w", err)}
	}
	return nil
}

// retryable status codes: server errors and rate limiting.
func retryable(code int) bool { return code/100 == 5 || code == http.StatusTooManyRequests }

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
