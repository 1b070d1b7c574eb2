package feed

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solanawatchx/watchx-backend/internal/metrics"
	"github.com/solanawatchx/watchx-backend/internal/model"
	"github.com/solanawatchx/watchx-backend/internal/tracker"
)

func batch(mints ...string) []model.Token {
	out := make([]model.Token, len(mints))
	for i, m := range mints {
		out[i] = model.Token{Mint: m, CreationTime: int64(i + 1)}
	}
	return out
}

func mints(tokens []model.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Mint
	}
	return out
}

func TestFeed_PrependsNewest(t *testing.T) {
	f := New(10)
	ctx := context.Background()

	require.NoError(t, f.HandleTokens(ctx, batch("b", "a")))
	require.NoError(t, f.HandleTokens(ctx, batch("d", "c")))

	assert.Equal(t, []string{"d", "c", "b", "a"}, mints(f.Snapshot(0)))
	assert.Equal(t, []string{"d", "c"}, mints(f.Snapshot(2)))
	assert.Equal(t, 4, f.Len())
}

func TestFeed_Bounded(t *testing.T) {
	f := New(3)
	ctx := context.Background()

	require.NoError(t, f.HandleTokens(ctx, batch("c", "b", "a")))
	require.NoError(t, f.HandleTokens(ctx, batch("e", "d")))

	assert.Equal(t, []string{"e", "d", "c"}, mints(f.Snapshot(0)))

	require.NoError(t, f.HandleTokens(ctx, batch("z", "y", "x", "w")))
	assert.Equal(t, []string{"z", "y", "x"}, mints(f.Snapshot(0)))
}

func TestFeed_SnapshotIsCopy(t *testing.T) {
	f := New(5)
	require.NoError(t, f.HandleTokens(context.Background(), batch("a")))

	snap := f.Snapshot(0)
	snap[0].Mint = "mutated"

	assert.Equal(t, "a", f.Snapshot(0)[0].Mint)
}

func TestFeed_EmptyBatchAndClear(t *testing.T) {
	f := New(0)
	assert.Equal(t, DefaultMaxTokens, f.max)

	require.NoError(t, f.HandleTokens(context.Background(), nil))
	assert.Equal(t, 0, f.Len())
	assert.NotNil(t, f.Snapshot(10))

	require.NoError(t, f.HandleTokens(context.Background(), batch("a")))
	f.Clear()
	assert.Equal(t, 0, f.Len())
}

func TestFeed_Concurrent(t *testing.T) {
	f := New(50)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = f.HandleTokens(context.Background(), batch(fmt.Sprintf("m%d", i)))
		}(i)
		go func() {
			defer wg.Done()
			_ = f.Snapshot(5)
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, f.Len())
}

func TestFeed_ReadmittedMintKeepsOneCopy(t *testing.T) {
	f := New(10)
	ctx := context.Background()

	require.NoError(t, f.HandleTokens(ctx, batch("a", "b")))
	require.NoError(t, f.HandleTokens(ctx, batch("c")))

	// "a" comes back (tracker reset or eviction) with a fresher payload.
	again := []model.Token{
		{Mint: "d", CreationTime: 9},
		{Mint: "a", CreationTime: 1, Fields: map[string]any{"marketCap": 2.0}},
		{Mint: "d", CreationTime: 9},
	}
	require.NoError(t, f.HandleTokens(ctx, again))

	snap := f.Snapshot(0)
	assert.Equal(t, []string{"d", "c", "a", "b"}, mints(snap))
	assert.Equal(t, 2.0, snap[2].Fields["marketCap"])
}

func TestFeed_TrackerResetDoesNotDuplicate(t *testing.T) {
	f := New(10)
	tr := tracker.New(10)
	ctx := context.Background()
	listing := []model.Token{{Mint: "b", CreationTime: 2}, {Mint: "a", CreationTime: 1}}

	require.NoError(t, f.HandleTokens(ctx, tr.Admit(listing)))
	tr.Reset()
	require.NoError(t, f.HandleTokens(ctx, tr.Admit(listing)))

	assert.Equal(t, []string{"b", "a"}, mints(f.Snapshot(0)))
}

func TestFeed_Instrument(t *testing.T) {
	m := metrics.New()
	f := New(2).Instrument(m)

	require.NoError(t, f.HandleTokens(context.Background(), batch("a", "b", "c")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FeedSize))

	f.Clear()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FeedSize))
}
