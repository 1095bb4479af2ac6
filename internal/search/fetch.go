// Package search builds search commands: a query URL template, an
// optional result-page parser and a Markdown preview of parsed results.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/intensifier/ishell/internal/command"
)

const (
	maxPageSize    = 2 * 1024 * 1024 // 2MB
	defaultTimeout = 10 * time.Second
)

// Retry intervals of the fetcher.
var (
	RetryInitialInterval = 250 * time.Millisecond
	RetryMaxInterval     = 2 * time.Second
)

// Fetcher downloads result pages with retries.
type Fetcher struct {
	client  *http.Client
	retries uint64
}

// NewFetcher creates a fetcher. A non-positive timeout selects the
// default; retries counts attempts after the first.
func NewFetcher(timeout time.Duration, retries int) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if retries < 0 {
		retries = 0
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		retries: uint64(retries),
	}
}

func (f *Fetcher) newBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = RetryInitialInterval
	b.MaxInterval = RetryMaxInterval
	b.RandomizationFactor = 0.5
	b.Multiplier = 2.0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, f.retries), ctx)
}

// Fetch returns the body of url. Server errors and rate limiting are
// retried; other non-2xx statuses fail immediately. A cancelled ctx
// yields an error wrapping command.ErrFetchAborted.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var page string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

		resp, err := f.client.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("request failed with status code: %d", resp.StatusCode)
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return backoff.Permanent(fmt.Errorf("request failed with status code: %d", resp.StatusCode))
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		page = string(body)
		return nil
	}

	if err := backoff.Retry(op, f.newBackoff(ctx)); err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return "", fmt.Errorf("%w: %v", command.ErrFetchAborted, err)
		}
		return "", err
	}
	return page, nil
}
