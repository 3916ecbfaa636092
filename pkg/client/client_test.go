// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pedigree/pedigree/pkg/pedigree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// server returns a test server that calls h and counts requests.
func server(t *testing.T, h http.HandlerFunc) (*Client, *atomic.Int64) {
	t.Helper()
	var n atomic.Int64
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.Add(1)
		h(w, r)
	}))
	t.Cleanup(s.Close)
	c, err := New(s.URL, Options{Backoff: time.Millisecond, Retries: 2})
	require.NoError(t, err)
	return c, &n
}

func TestClient_Get(t *testing.T) {
	c, _ := server(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/family/F0":
			_, _ = w.Write([]byte(`{"id":"F0","husband_id":"P1","children":["P3","P4"]}`))
		case "/person/P1":
			_, _ = w.Write([]byte(`{"id":"P1","name":"John","parent_id":"F1","family_id":"F0"}`))
		case "/person/null":
			_, _ = w.Write([]byte(`null`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()
	f, err := c.Family(ctx, "F0")
	require.NoError(t, err)
	assert.Equal(t, &pedigree.Family{ID: "F0", Husband: "P1", Children: []pedigree.PersonID{"P3", "P4"}}, f)
	p, err := c.Person(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, &pedigree.Person{ID: "P1", Name: "John", ParentFamily: "F1", Family: "F0"}, p)

	_, err = c.Family(ctx, "F9")
	assert.True(t, pedigree.IsNotFound(err), err)
	assert.False(t, pedigree.IsTransportError(err), err)
	_, err = c.Person(ctx, "null")
	assert.True(t, pedigree.IsNotFound(err), err)
}

func TestClient_Retry(t *testing.T) {
	var calls atomic.Int64
	c, n := server(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "try again", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":"F0"}`))
	})
	f, err := c.Family(context.Background(), "F0")
	require.NoError(t, err)
	assert.Equal(t, pedigree.FamilyID("F0"), f.ID)
	assert.Equal(t, int64(3), n.Load())
}

func TestClient_Errors(t *testing.T) {
	for _, x := range []struct {
		name      string
		h         http.HandlerFunc
		retryable bool
		calls     int64
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { http.Error(w, "down", 500) }, true, 3},
		{"too many requests", func(w http.ResponseWriter, r *http.Request) { http.Error(w, "slow down", 429) }, true, 3},
		{"bad request", func(w http.ResponseWriter, r *http.Request) { http.Error(w, "bad", 400) }, false, 1},
		{"bad json", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"id":`)) }, false, 1},
	} {
		t.Run(x.name, func(t *testing.T) {
			c, n := server(t, x.h)
			_, err := c.Family(context.Background(), "F0")
			require.Error(t, err)
			assert.True(t, pedigree.IsTransportError(err), err)
			assert.False(t, pedigree.IsNotFound(err), err)
			assert.Equal(t, x.retryable, pedigree.IsRetryable(err))
			assert.Equal(t, x.calls, n.Load())
		})
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	s := httptest.NewServer(http.NotFoundHandler())
	s.Close()
	c, err := New(s.URL, Options{Retries: -1})
	require.NoError(t, err)
	_, err = c.Person(context.Background(), "P1")
	assert.True(t, pedigree.IsRetryable(err), err)
}

func TestClient_Cancelled(t *testing.T) {
	c, n := server(t, func(w http.ResponseWriter, r *http.Request) { http.Error(w, "down", 500) })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Family(ctx, "F0")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n.Load())
}

func TestClient_Timeout(t *testing.T) {
	c, n := server(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
			_, _ = w.Write([]byte(`{"id":"F0"}`))
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	f, err := c.Family(ctx, "F0")
	assert.Nil(t, f)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, pedigree.IsNotFound(err), err)
	assert.Equal(t, int64(1), n.Load(), "not retried")
}

func TestClient_CancelledBetweenRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c, n := server(t, func(w http.ResponseWriter, r *http.Request) {
		cancel()
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	_, err := c.Person(ctx, "P1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, pedigree.IsNotFound(err), err)
	assert.Equal(t, int64(1), n.Load())
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("ftp://example.com", Options{})
	assert.ErrorContains(t, err, "expected http or https")
	c, err := New("http://example.com/api", Options{})
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api", c.URL().String())
	assert.Equal(t, DefaultRetries+1, c.backoff.Steps)
}
