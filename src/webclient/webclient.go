// Package webclient holds the shared outbound HTTP plumbing for provider
// API calls: a client constructor with sane timeouts and a bounded retry
// loop for transient upstream failures.
package webclient

import (
	"context"
	"net/http"
	"time"
)

// NewDefault returns an HTTP client with sane timeouts.
func NewDefault(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Attempt performs one request and reports the status, body and error.
type Attempt func() (status int, body []byte, err error)

// retryable reports whether an attempt outcome is worth another try.
func retryable(status int, err error) bool {
	return err != nil || status == http.StatusTooManyRequests || status >= 500
}

// DoWithRetry runs fn up to attempts times, backing off exponentially
// between tries (capped at 30s) and aborting early when ctx expires.
func DoWithRetry(ctx context.Context, attempts int, initialDelay time.Duration, fn Attempt) (int, []byte, error) {
	if attempts <= 0 {
		attempts = 1
	}
	if initialDelay <= 0 {
		initialDelay = 2 * time.Second
	}

	delay := initialDelay
	var status int
	var body []byte
	var err error
	for i := 0; i < attempts; i++ {
		status, body, err = fn()
		if !retryable(status, err) || i == attempts-1 {
			return status, body, err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return status, body, ctx.Err()
		case <-timer.C:
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
	return status, body, err
}
