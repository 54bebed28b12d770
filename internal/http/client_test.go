package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanvivo/price-dashboard/internal/http/ratelimit"
)

func fastConfig(retries int) ratelimit.Config {
	return ratelimit.Config{
		RequestsPerSecond: 0,
		MaxRetries:        retries,
		InitialBackoffMs:  1,
		MaxBackoffMs:      5,
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestGetSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(fastConfig(0), time.Second, nil, nil)
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, readBody(t, resp))
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(fastConfig(3), time.Second, nil, nil)
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", readBody(t, resp))
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(fastConfig(2), time.Second, nil, nil)
	_, err := c.Get(context.Background(), srv.URL)

	var fetchErr *ratelimit.FetchRetryError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 3, fetchErr.Attempts)
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.LastStatus)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNonRetryableStatusFailsImmediately(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(fastConfig(3), time.Second, nil, nil)
	_, err := c.Get(context.Background(), srv.URL)

	var fetchErr *ratelimit.FetchRetryError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 1, fetchErr.Attempts)
	assert.Equal(t, http.StatusNotFound, fetchErr.LastStatus)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTransportErrorHasNoStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(fastConfig(0), time.Second, nil, nil)
	_, err := c.Get(context.Background(), url)

	var fetchErr *ratelimit.FetchRetryError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 0, fetchErr.LastStatus)
	assert.Error(t, fetchErr.LastError)
}

func TestRetryAfter(t *testing.T) {
	cfg := ratelimit.Config{MaxBackoffMs: 2000}

	d, ok := ratelimit.RetryAfter("1", cfg)
	require.True(t, ok)
	assert.Equal(t, time.Second, d)

	d, ok = ratelimit.RetryAfter("60", cfg)
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, d)

	_, ok = ratelimit.RetryAfter("soon", cfg)
	assert.False(t, ok)
}

func TestIsRetryableStatus(t *testing.T) {
	assert.True(t, ratelimit.IsRetryableStatus(429))
	assert.True(t, ratelimit.IsRetryableStatus(503))
	assert.False(t, ratelimit.IsRetryableStatus(404))
	assert.False(t, ratelimit.IsRetryableStatus(200))
}
