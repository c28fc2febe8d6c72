// Package fetch provides the HTTP document fetcher shared by the pipeline.
//
// The fetcher keeps one pooled client for the whole process, sends browser-like
// headers the upstream site expects, and retries transient failures (timeouts,
// connection errors, and throttling status codes) with exponential backoff,
// capped at three attempts per document.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// BaseURL is the upstream site all match pages are fetched from.
const BaseURL = "https://www.ysscores.com"

const (
	poolSize    = 20
	maxRetries  = 2 // attempts = 1 + maxRetries
	retryWait   = time.Second
	maxInterval = 10 * time.Second
)

// Headers the site serves localized content for. Without the Arabic
// Accept-Language the labels the extractor keys on are not rendered.
var defaultHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Referer":         "https://www.google.dz/",
	"Accept-Language": "ar-DZ,ar;q=0.9,fr-DZ;q=0.8,fr;q=0.7,en;q=0.5",
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
}

// retryableStatus lists the HTTP statuses worth another attempt.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client fetches raw markup over HTTP.
type Client struct {
	httpClient *http.Client
	wait       time.Duration
}

// New creates a fetcher with a connection pool sized to the detail fetch
// concurrency so parallel workers reuse connections instead of opening new
// ones per request.
func New() *Client {
	transport := &http.Transport{
		MaxIdleConns:        poolSize,
		MaxIdleConnsPerHost: poolSize,
		MaxConnsPerHost:     poolSize,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		httpClient: &http.Client{Transport: transport},
		wait:       retryWait,
	}
}

// Get fetches url and returns the response body. timeout bounds each
// individual attempt; retries get a fresh deadline. A non-retryable non-200
// status fails immediately.
func (c *Client) Get(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	var body []byte

	attempt := func() error {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		for k, v := range defaultHeaders {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("fetching page: %w", err)
		}
		defer resp.Body.Close()

		if retryableStatus[resp.StatusCode] {
			io.Copy(io.Discard, resp.Body) //nolint:errcheck
			return fmt.Errorf("retryable status code: %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.wait
	policy.MaxInterval = maxInterval

	err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	return body, nil
}
