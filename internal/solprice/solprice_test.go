package solprice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	calls atomic.Int32
	delay time.Duration
	price float64

	mu  sync.Mutex
	err error
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSource) GetSolPrice(ctx context.Context) (map[string]any, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return map[string]any{"solPrice": f.price}, nil
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newCache(src Source) (*Cache, *clock) {
	clk := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := New(src, 5*time.Second, nil, nil)
	c.now = clk.now
	return c, clk
}

func TestLookup_CachesWithinTTL(t *testing.T) {
	src := &fakeSource{price: 150.5}
	c, clk := newCache(src)
	ctx := context.Background()

	first, err := c.Lookup(ctx)
	require.NoError(t, err)
	assert.Equal(t, false, first["cached"])
	assert.Equal(t, 150.5, first["solPrice"])
	assert.Equal(t, "2024-06-01T12:00:00Z", first["ts"])

	clk.advance(4 * time.Second)
	second, err := c.Lookup(ctx)
	require.NoError(t, err)
	assert.Equal(t, true, second["cached"])
	assert.Equal(t, int32(1), src.calls.Load())

	clk.advance(time.Second)
	third, err := c.Lookup(ctx)
	require.NoError(t, err)
	assert.Equal(t, false, third["cached"])
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestLookup_StaleOnFailure(t *testing.T) {
	src := &fakeSource{price: 100}
	c, clk := newCache(src)
	ctx := context.Background()

	_, err := c.Lookup(ctx)
	require.NoError(t, err)

	src.setErr(errors.New("upstream 503"))
	clk.advance(10 * time.Second)

	got, err := c.Lookup(ctx)
	require.NoError(t, err)
	assert.Equal(t, true, got["cached"])
	assert.Equal(t, true, got["stale"])
	assert.Equal(t, 100.0, got["solPrice"])
	assert.Equal(t, "2024-06-01T12:00:00Z", got["ts"])
}

func TestLookup_NothingCached(t *testing.T) {
	src := &fakeSource{}
	src.setErr(errors.New("boom"))
	c, _ := newCache(src)

	_, err := c.Lookup(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLookup_CoalescesMisses(t *testing.T) {
	src := &fakeSource{price: 1, delay: 50 * time.Millisecond}
	c, _ := newCache(src)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Lookup(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// A late caller may miss the shared flight, but ten calls never fan out.
	assert.LessOrEqual(t, src.calls.Load(), int32(2))
}

func TestLookup_DoesNotShareCachedMap(t *testing.T) {
	c, _ := newCache(&fakeSource{price: 2})

	got, err := c.Lookup(context.Background())
	require.NoError(t, err)
	got["solPrice"] = -1.0

	again, err := c.Lookup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2.0, again["solPrice"])
}

func TestServeHTTP(t *testing.T) {
	src := &fakeSource{}
	src.setErr(errors.New("down"))
	c, _ := newCache(src)

	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sol-price", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Failed to fetch SOL price", body["error"])

	src.setErr(nil)
	rec = httptest.NewRecorder()
	c.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sol-price", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
