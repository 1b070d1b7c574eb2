package solprice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/solanawatchx/watchx-backend/internal/metrics"
)

// DefaultTTL is how long a fetched price is served without refetching.
const DefaultTTL = 5 * time.Second

// ErrUnavailable is returned when the upstream fails and nothing is cached.
var ErrUnavailable = errors.New("sol price unavailable")

// Source fetches the raw price object.
type Source interface {
	GetSolPrice(ctx context.Context) (map[string]any, error)
}

// Cache holds the last fetched price.
type Cache struct {
	source  Source
	ttl     time.Duration
	timeout time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.RWMutex
	data      map[string]any
	fetchedAt time.Time
}

// New creates a price cache. ttl <= 0 uses DefaultTTL.
func New(source Source, ttl time.Duration, m *metrics.Metrics, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		source:  source,
		ttl:     ttl,
		timeout: 10 * time.Second,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Lookup returns the price payload with cached, ts and (on fallback) stale
// fields added.
func (c *Cache) Lookup(ctx context.Context) (map[string]any, error) {
	if data, at, ok := c.fresh(); ok {
		c.metrics.RecordSolPrice("hit")
		return decorate(data, at, true, false), nil
	}

	v, err, _ := c.group.Do("sol-price", func() (any, error) {
		// Detached so one cancelled caller does not fail the others.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		data, err := c.source.GetSolPrice(fetchCtx)
		if err != nil {
			return nil, err
		}
		if data == nil {
			data = map[string]any{}
		}

		at := c.now()
		c.mu.Lock()
		c.data = data
		c.fetchedAt = at
		c.mu.Unlock()
		return decorate(data, at, false, false), nil
	})
	if err == nil {
		c.metrics.RecordSolPrice("miss")
		return v.(map[string]any), nil
	}

	c.logger.Warn("sol price fetch failed", "err", err)

	c.mu.RLock()
	data, at := c.data, c.fetchedAt
	c.mu.RUnlock()
	if data != nil {
		c.metrics.RecordSolPrice("stale")
		return decorate(data, at, true, true), nil
	}

	c.metrics.RecordSolPrice("error")
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// ServeHTTP serves GET /sol-price.
func (c *Cache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	payload, err := c.Lookup(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "Failed to fetch SOL price"})
		return
	}
	json.NewEncoder(w).Encode(payload)
}

func (c *Cache) fresh() (map[string]any, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil || c.now().Sub(c.fetchedAt) >= c.ttl {
		return nil, time.Time{}, false
	}
	return c.data, c.fetchedAt, true
}

// decorate copies data so callers never share the cached map.
func decorate(data map[string]any, at time.Time, cached, stale bool) map[string]any {
	out := make(map[string]any, len(data)+3)
	maps.Copy(out, data)
	out["cached"] = cached
	out["ts"] = at.UTC().Format(time.RFC3339Nano)
	if stale {
		out["stale"] = true
	}
	return out
}
