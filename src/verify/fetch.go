package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// ProbeTimeout bounds the cheap HEAD existence check.
	ProbeTimeout = 5 * time.Second
	// FetchTimeout bounds full content retrieval.
	FetchTimeout = 8 * time.Second

	maxBodyBytes = 512 * 1024

	userAgent = "claimcheck/1.0 (+https://github.com/signalworks/claimcheck)"
)

// ErrTimeout reports that the caller's budget elapsed before the target responded.
var ErrTimeout = errors.New("fetch: timeout")

// FetchResult captures one bounded outbound request.
type FetchResult struct {
	Status      int
	FinalURL    string
	ContentType string
	Body        []byte
}

// Success reports whether the response status is acceptable for verification.
func (r *FetchResult) Success() bool {
	return r != nil && r.Status >= 200 && r.Status < 400
}

// Fetcher performs single outbound HTTP requests with an enforced deadline.
// Redirects are followed; the final redirected URL is surfaced on the result.
type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			// Per-request deadlines come from the caller's context; the
			// client-level timeout is only a backstop.
			Timeout: 30 * time.Second,
		},
	}
}

// Do issues one request and returns before timeout elapses, either with a
// result or with ErrTimeout / a network error. The in-flight call is
// cancelled on timeout, never left running past the budget.
func (f *Fetcher) Do(ctx context.Context, method, rawURL string, timeout time.Duration) (*FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	result := &FetchResult{
		Status:      resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
	}

	if method == http.MethodGet {
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return nil, ErrTimeout
			}
			// Keep what arrived; a truncated body is still usable for
			// title extraction.
		}
		result.Body = body
	}

	return result, nil
}
