package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanvivo/price-dashboard/internal/http/ratelimit"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		Timeout:   2 * time.Second,
		RateLimit: ratelimit.Config{MaxRetries: 0, InitialBackoffMs: 1, MaxBackoffMs: 5},
	}
}

func fixedClock() time.Time { return fixedNow }

func TestFetchCurrentPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/prices/current", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("t"))
		w.Write([]byte(`{"timestamp":"2024-05-01 10:00:00","data":[{"id":"p1","Sorte":"A","Kultivar":"K","Pharmacy ID":"X","Price (€/g)":9.5,"Trend":"↑ +0.50€"}]}`))
	}))
	defer srv.Close()

	g := New(testConfig(srv.URL + "/api/prices"))
	snap, err := g.FetchCurrentPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01 10:00:00", snap.Timestamp)
	require.Len(t, snap.Data, 1)
	assert.Equal(t, "p1", snap.Data[0].ID)
	assert.Equal(t, "9.5", snap.Data[0].Price.String())
}

func TestFetchTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/timestamps", r.URL.Path)
		w.Write([]byte(`{"timestamps":["2024-05-02 08:00:00","2024-05-01 08:00:00"]}`))
	}))
	defer srv.Close()

	g := New(testConfig(srv.URL))
	index, err := g.FetchTimestamps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-05-02 08:00:00", "2024-05-01 08:00:00"}, index.Timestamps)
}

func TestFetchHistoricalEscapesTimestamp(t *testing.T) {
	var escaped string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		escaped = r.URL.EscapedPath()
		w.Write([]byte(`{"timestamp":"2024-05-01 10:00:00","data":[]}`))
	}))
	defer srv.Close()

	g := New(testConfig(srv.URL))
	_, err := g.FetchHistoricalPrices(context.Background(), "2024-05-01 10:00:00")
	require.NoError(t, err)
	assert.Equal(t, "/historical/2024-05-01%2010:00:00", escaped)
}

func TestFetchHistoricalRejectsEmptyTimestamp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	g := New(testConfig(srv.URL))
	_, err := g.FetchHistoricalPrices(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, int32(0), calls.Load())
}

func TestServerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := New(testConfig(srv.URL))
	_, err := g.FetchCurrentPrices(context.Background())

	var srvErr *ServerError
	require.True(t, errors.As(err, &srvErr))
	assert.Equal(t, http.StatusInternalServerError, srvErr.Status)
	assert.ErrorIs(t, err, ErrNetworkFailure)
}

func TestUndecodableBodyIsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	g := New(testConfig(srv.URL))
	_, err := g.FetchTimestamps(context.Background())

	var srvErr *ServerError
	require.True(t, errors.As(err, &srvErr))
	assert.ErrorIs(t, err, ErrNetworkFailure)
}

func TestUnreachableServerIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	g := New(testConfig(base))
	_, err := g.FetchCurrentPrices(context.Background())

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.ErrorIs(t, err, ErrNetworkFailure)
}

func TestCacheBusterIsStrictlyIncreasing(t *testing.T) {
	var mu sync.Mutex
	var seen []int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, err := strconv.ParseInt(r.URL.Query().Get("t"), 10, 64)
		assert.NoError(t, err)
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
		w.Write([]byte(`{"timestamps":[]}`))
	}))
	defer srv.Close()

	g := New(testConfig(srv.URL), WithClock(fixedClock))
	for i := 0; i < 3; i++ {
		_, err := g.FetchTimestamps(context.Background())
		require.NoError(t, err)
	}

	require.Len(t, seen, 3)
	assert.Equal(t, fixedNow.UnixMilli(), seen[0])
	assert.Equal(t, seen[0]+1, seen[1])
	assert.Equal(t, seen[1]+1, seen[2])
}
