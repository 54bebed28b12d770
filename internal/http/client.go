package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/sanvivo/price-dashboard/internal/http/ratelimit"
	"github.com/sanvivo/price-dashboard/internal/metrics"
)

const tracerName = "github.com/sanvivo/price-dashboard/internal/http"

// Client is an HTTP client with rate limiting and retry logic
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	config     ratelimit.Config
	metrics    *metrics.Recorder
	logger     *zerolog.Logger
	tracer     trace.Tracer
}

// NewClient creates a new HTTP client with rate limiting
func NewClient(config ratelimit.Config, timeout time.Duration, recorder *metrics.Recorder, logger *zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: ratelimit.NewLimiter(config),
		config:  config,
		metrics: recorder,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}
}

// Get performs a GET request with rate limiting and retry logic
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, url)
}

// Do performs a bodyless HTTP request with rate limiting and retry logic.
// A 2xx response is returned to the caller, who must close its body; every
// other outcome is reported as *ratelimit.FetchRetryError.
func (c *Client) Do(ctx context.Context, method, url string) (*http.Response, error) {
	ctx, span := c.tracer.Start(ctx, method+" "+url, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("http.method", method), attribute.String("http.url", url))

	resp, attempts, err := c.do(ctx, method, url)
	span.SetAttributes(attribute.Int("http.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, url string) (*http.Response, int, error) {
	b := backoff.WithContext(ratelimit.NewBackOff(c.config), ctx)

	var lastStatus int
	var lastErr error

	for attempt := 1; ; attempt++ {
		// Throttle to respect rate limits
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, attempt - 1, &ratelimit.FetchRetryError{URL: url, Attempts: attempt - 1, LastStatus: lastStatus, LastError: err}
		}

		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return nil, attempt, fmt.Errorf("failed to build request for %s: %w", url, err)
		}
		req.Header.Set("User-Agent", "Sanvivo-PriceDashboard/1.0")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Cache-Control", "no-cache")

		var wait time.Duration
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastStatus = 0
			lastErr = err
		} else {
			lastStatus = resp.StatusCode
			lastErr = nil

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, attempt, nil
			}

			// Non-retryable error - fail immediately
			if !ratelimit.IsRetryableStatus(resp.StatusCode) {
				resp.Body.Close()
				return nil, attempt, &ratelimit.FetchRetryError{URL: url, Attempts: attempt, LastStatus: resp.StatusCode}
			}

			if resp.StatusCode == http.StatusTooManyRequests {
				if d, ok := ratelimit.RetryAfter(resp.Header.Get("Retry-After"), c.config); ok {
					wait = d
				}
			}
			resp.Body.Close()
		}

		next := b.NextBackOff()
		if next == backoff.Stop {
			if lastErr == nil && ctx.Err() != nil {
				lastErr = ctx.Err()
			}
			return nil, attempt, &ratelimit.FetchRetryError{URL: url, Attempts: attempt, LastStatus: lastStatus, LastError: lastErr}
		}
		if wait > 0 {
			next = wait
		}

		c.metrics.RecordRetry()
		c.logger.Debug().
			Str("url", url).
			Int("attempt", attempt).
			Int("status", lastStatus).
			Err(lastErr).
			Dur("backoff", next).
			Msg("Retrying request")

		timer := time.NewTimer(next)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, attempt, &ratelimit.FetchRetryError{URL: url, Attempts: attempt, LastStatus: lastStatus, LastError: ctx.Err()}
		case <-timer.C:
		}
	}
}
