// Package gateway reads price snapshots and the snapshot index from the
// remote pricing API.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	httpclient "github.com/sanvivo/price-dashboard/internal/http"
	"github.com/sanvivo/price-dashboard/internal/http/ratelimit"
	"github.com/sanvivo/price-dashboard/internal/metrics"
	"github.com/sanvivo/price-dashboard/internal/types"
)

// DefaultBaseURL is the pricing API root used when none is configured.
const DefaultBaseURL = "http://localhost:8000/api/prices"

const (
	opCurrent    = "current"
	opTimestamps = "timestamps"
	opHistorical = "historical"
)

// Config configures the gateway.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit ratelimit.Config
}

// DefaultConfig returns the gateway defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   30 * time.Second,
		RateLimit: ratelimit.DefaultConfig(),
	}
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithClock replaces the clock used for cache-busting parameters.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(g *Gateway) { g.metrics = recorder }
}

// WithLogger attaches a logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Gateway is the remote data gateway. It is safe for concurrent use.
type Gateway struct {
	baseURL string
	client  *httpclient.Client
	now     func() time.Time
	metrics *metrics.Recorder
	logger  *zerolog.Logger

	mu     sync.Mutex
	lastMs int64
}

// New creates a gateway for the configured API root.
func New(config Config, opts ...Option) *Gateway {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	nop := zerolog.Nop()
	g := &Gateway{
		baseURL: trimSlash(config.BaseURL),
		now:     time.Now,
		logger:  &nop,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.client = httpclient.NewClient(config.RateLimit, config.Timeout, g.metrics, g.logger)
	return g
}

// FetchCurrentPrices returns the latest snapshot.
func (g *Gateway) FetchCurrentPrices(ctx context.Context) (types.Snapshot, error) {
	var snapshot types.Snapshot
	err := g.getJSON(ctx, opCurrent, g.baseURL+"/current", &snapshot)
	return snapshot, err
}

// FetchTimestamps returns the index of stored snapshots, newest first.
func (g *Gateway) FetchTimestamps(ctx context.Context) (types.TimestampIndex, error) {
	var index types.TimestampIndex
	if err := g.getJSON(ctx, opTimestamps, g.baseURL+"/timestamps", &index); err != nil {
		return types.TimestampIndex{}, err
	}
	if index.Timestamps == nil {
		index.Timestamps = []string{}
	}
	return index, nil
}

// FetchHistoricalPrices returns the snapshot stored under ts.
func (g *Gateway) FetchHistoricalPrices(ctx context.Context, ts string) (types.Snapshot, error) {
	if ts == "" {
		return types.Snapshot{}, fmt.Errorf("%s: empty timestamp: %w", opHistorical, ErrInvalidArgument)
	}
	var snapshot types.Snapshot
	err := g.getJSON(ctx, opHistorical, g.baseURL+"/historical/"+url.PathEscape(ts), &snapshot)
	return snapshot, err
}

func (g *Gateway) getJSON(ctx context.Context, op, endpoint string, out any) error {
	start := time.Now()
	target := endpoint + "?t=" + strconv.FormatInt(g.cacheBuster(), 10)

	err := g.fetch(ctx, op, target, out)

	outcome := "ok"
	var netErr *NetworkError
	var srvErr *ServerError
	switch {
	case errors.As(err, &netErr):
		outcome = "network_error"
	case errors.As(err, &srvErr):
		outcome = "server_error"
	}
	g.metrics.RecordRequest(op, outcome, time.Since(start))

	if err != nil {
		g.logger.Warn().Err(err).Str("op", op).Str("url", target).Msg("Pricing API request failed")
		return err
	}
	g.logger.Debug().Str("op", op).Dur("duration", time.Since(start)).Msg("Pricing API request completed")
	return nil
}

func (g *Gateway) fetch(ctx context.Context, op, target string, out any) error {
	resp, err := g.client.Get(ctx, target)
	if err != nil {
		var retryErr *ratelimit.FetchRetryError
		if errors.As(err, &retryErr) && retryErr.LastStatus != 0 {
			return &ServerError{Op: op, URL: target, Status: retryErr.LastStatus, Err: err}
		}
		return &NetworkError{Op: op, URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, URL: target, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ServerError{Op: op, URL: target, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// cacheBuster returns the current Unix time in milliseconds, bumped so that
// consecutive calls never repeat a value.
func (g *Gateway) cacheBuster() int64 {
	ms := g.now().UnixMilli()
	g.mu.Lock()
	defer g.mu.Unlock()
	if ms <= g.lastMs {
		ms = g.lastMs + 1
	}
	g.lastMs = ms
	return ms
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
