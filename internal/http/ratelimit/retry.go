package ratelimit

import (
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// FetchRetryError represents an error when all retry attempts are exhausted
// or the server answered with a non-retryable status
type FetchRetryError struct {
	URL        string
	Attempts   int
	LastStatus int
	LastError  error
}

func (e *FetchRetryError) Error() string {
	msg := "Failed to fetch " + e.URL + " after " + strconv.Itoa(e.Attempts) + " attempts"
	if e.LastStatus != 0 {
		msg += " (HTTP " + strconv.Itoa(e.LastStatus) + ")"
	}
	if e.LastError != nil {
		msg += ": " + e.LastError.Error()
	}
	return msg
}

func (e *FetchRetryError) Unwrap() error {
	return e.LastError
}

// IsRetryableStatus checks if an HTTP status code is retryable
// Retryable: 429, 500-599
func IsRetryableStatus(status int) bool {
	return status == 429 || (status >= 500 && status < 600)
}

// NewBackOff builds an exponential backoff with 25% jitter that stops after
// config.MaxRetries retries.
func NewBackOff(config Config) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Duration(config.InitialBackoffMs) * time.Millisecond
	b.MaxInterval = time.Duration(config.MaxBackoffMs) * time.Millisecond
	b.Multiplier = 2
	b.RandomizationFactor = 0.25
	b.MaxElapsedTime = 0
	b.Reset()

	retries := config.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithMaxRetries(b, uint64(retries))
}

// RetryAfter parses a Retry-After header given in seconds, capped at the
// configured maximum backoff.
func RetryAfter(header string, config Config) (time.Duration, bool) {
	if header == "" {
		return 0, false
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds <= 0 {
		return 0, false
	}
	d := time.Duration(seconds) * time.Second
	if limit := time.Duration(config.MaxBackoffMs) * time.Millisecond; limit > 0 && d > limit {
		d = limit
	}
	return d, true
}
