package pumpfun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is a non-2xx answer from pump.fun.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
	RetryAfter time.Duration // from the Retry-After header, 0 if absent
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pump.fun api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether the status is worth another attempt (429, 5xx).
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// TransportError is a failure before a complete response was read:
// dial, TLS, reset connection, timeout or truncated body.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "pump.fun transport: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// fetch performs one GET against the client's host.
func (c *Client) fetch(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	}
	return body, nil
}

// fetchWithRetry repeats fetch on rate limits, 5xx and transport failures.
// A Retry-After from the server overrides the backoff when it is longer,
// up to the policy's cap.
func (c *Client) fetchWithRetry(ctx context.Context, path string, query url.Values) ([]byte, error) {
	backoff := c.retry.backoff
	var lastErr error

	for attempt := 0; attempt <= c.retry.retries; attempt++ {
		if attempt > 0 {
			wait := c.retryDelay(lastErr, backoff)
			c.logger.Debug("retrying pump.fun request",
				"attempt", attempt,
				"wait", wait,
				"path", path,
				"error", lastErr,
			)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
			backoff *= 2
		}

		body, err := c.fetch(ctx, path, query)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// retryDelay is the jittered backoff (0.5x to 1.5x), raised to the server's
// Retry-After when that is longer.
func (c *Client) retryDelay(err error, backoff time.Duration) time.Duration {
	wait := time.Duration(0)
	if backoff > 0 {
		wait = backoff/2 + time.Duration(rand.Int64N(int64(backoff)+1))
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		ra := apiErr.RetryAfter
		if c.retry.maxWait > 0 && ra > c.retry.maxWait {
			ra = c.retry.maxWait
		}
		if ra > wait {
			wait = ra
		}
	}
	return wait
}

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// parseRetryAfter accepts delta-seconds or an HTTP date. Invalid or past
// values yield 0.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
