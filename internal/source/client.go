package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "alphatrack/1.0 (+local)"

// Client is the HTTP session shared by the adapters: per-host rate
// limiting plus bounded retries on transient statuses (429 and 5xx).
type Client struct {
	hc      *http.Client
	limiter *HostLimiter
	retries int
	backoff time.Duration
}

func NewClient(limiter *HostLimiter) *Client {
	return &Client{
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
		retries: 3,
		backoff: 500 * time.Millisecond,
	}
}

// Get fetches rawURL and returns the full response body. 429 and 5xx are
// retried with linear backoff; any other 4xx fails immediately.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}
		if c.limiter != nil {
			if err := c.limiter.WaitURL(ctx, rawURL); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.hc.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode < 400:
			return body, nil
		case retryable(resp.StatusCode):
			lastErr = fmt.Errorf("http %d", resp.StatusCode)
		default:
			return nil, fmt.Errorf("http %d", resp.StatusCode)
		}
	}
	return nil, fmt.Errorf("get %s: %w", rawURL, lastErr)
}

func retryable(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
