package pumpfun

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// DefaultUserAgent identifies the backend to upstream services.
const DefaultUserAgent = "Mozilla/5.0 (compatible; SolanaWatchX/1.0; +https://solanawatchx.site)"

// retryPolicy controls how a failed GET is repeated.
type retryPolicy struct {
	retries int           // attempts after the first
	backoff time.Duration // base delay, doubled per retry and jittered
	maxWait time.Duration // cap on a server-sent Retry-After
}

// Client talks to one pump.fun host (coin listing or price frontend).
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
	retry      retryPolicy

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a client for baseURL. By default a request is tried
// three times with a 500ms base backoff, and Retry-After is honored up to 30s.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
		retry: retryPolicy{
			retries: 2,
			backoff: 500 * time.Millisecond,
			maxWait: 30 * time.Second,
		},
		sleep: sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRetries sets how many times a failed request is repeated and the base backoff.
func WithRetries(retries int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.retry.retries = retries
		c.retry.backoff = backoff
	}
}

// WithMaxRetryAfter caps how long a Retry-After header can stall a request.
func WithMaxRetryAfter(d time.Duration) ClientOption {
	return func(c *Client) { c.retry.maxWait = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
