package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrClientStatus reports a 4xx response; these are never retried.
var ErrClientStatus = errors.New("httpclient: client error status")

// ErrServerStatus reports a 5xx response after retries were exhausted.
var ErrServerStatus = errors.New("httpclient: server error status")

const (
	defaultTimeout  = 60 * time.Second
	defaultAttempts = 3
	userAgent       = "go-vaultmedia/1.0"
)

// Doer is the subset of http.Client the package needs; tests swap it out.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options tunes the shared client.
type Options struct {
	// Timeout bounds each individual attempt (default 60s).
	Timeout time.Duration
	// Attempts is the maximum number of tries for retryable requests
	// (default 3, minimum 1).
	Attempts int
	// Backoff is the base delay between retries; attempt n waits n*Backoff
	// (default 1s).
	Backoff time.Duration
	// Doer overrides the underlying HTTP client; nil builds the tuned default.
	Doer Doer
}

// Client wraps an http.Client with the transport tuning and retry policy
// shared by every outbound API call.
type Client struct {
	doer     Doer
	attempts int
	backoff  time.Duration
}

// New constructs a Client from opts.
func New(opts Options) *Client {
	attempts := opts.Attempts
	if attempts < 1 {
		attempts = defaultAttempts
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}
	doer := opts.Doer
	if doer == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		doer = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   2,
				IdleConnTimeout:       30 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
			Timeout: timeout,
		}
	}
	return &Client{doer: doer, attempts: attempts, backoff: backoff}
}

// Do executes req once without retries. Callers own the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return c.doer.Do(req)
}

// Download fetches url and returns the response body. Transport errors and
// 5xx responses are retried with linear backoff; 4xx responses fail at once.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("httpclient: build request: %w", err)
		}
		req.Header.Set("Accept", "image/png, image/jpeg, image/webp, image/gif, */*")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.doer.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if readErr != nil {
				lastErr = fmt.Errorf("httpclient: read body: %w", readErr)
				continue
			}
			return data, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, fmt.Errorf("%w: %d from %s", ErrClientStatus, resp.StatusCode, url)
		default:
			lastErr = fmt.Errorf("%w: %d from %s", ErrServerStatus, resp.StatusCode, url)
		}
	}

	return nil, fmt.Errorf("httpclient: download failed after %d attempts: %w", c.attempts, lastErr)
}
