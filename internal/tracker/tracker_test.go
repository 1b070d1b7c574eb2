package tracker

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solanawatchx/watchx-backend/internal/model"
)

func tok(mint string, created int64) model.Token {
	return model.Token{Mint: mint, CreationTime: created}
}

func mints(tokens []model.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Mint
	}
	return out
}

func TestAdmit_FirstRunPriming(t *testing.T) {
	tr := New(10)
	require.Equal(t, StatePriming, tr.State())

	batch := []model.Token{tok("a", 100), tok("b", 200)}

	got := tr.Admit(batch)
	assert.Equal(t, []string{"b", "a"}, mints(got))
	assert.Equal(t, StateSteady, tr.State())
	assert.Equal(t, int64(200), tr.Watermark())

	got = tr.Admit(batch)
	assert.Empty(t, got)
}

func TestAdmit_FirstRunAdmitsOlderThanNothing(t *testing.T) {
	tr := New(10)

	got := tr.Admit([]model.Token{tok("old", 5), tok("older", 1)})
	assert.Equal(t, []string{"old", "older"}, mints(got))
}

func TestAdmit_TieAtWatermark(t *testing.T) {
	tr := New(10)
	tr.Admit([]model.Token{tok("a", 100), tok("b", 200)})

	got := tr.Admit([]model.Token{tok("c", 200)})
	assert.Equal(t, []string{"c"}, mints(got))
	assert.Equal(t, int64(200), tr.Watermark())

	got = tr.Admit([]model.Token{tok("c", 200)})
	assert.Empty(t, got)
}

func TestAdmit_RejectsOlderThanWatermark(t *testing.T) {
	tr := New(10)
	tr.Admit([]model.Token{tok("a", 500)})

	got := tr.Admit([]model.Token{tok("late", 499), tok("new", 501)})
	assert.Equal(t, []string{"new"}, mints(got))

	stats := tr.Stats()
	assert.Equal(t, uint64(1), stats.Rejected)
	assert.Equal(t, uint64(2), stats.Admitted)
}

func TestAdmit_Eviction(t *testing.T) {
	tr := New(2)

	require.Len(t, tr.Admit([]model.Token{tok("a", 1)}), 1)
	require.Len(t, tr.Admit([]model.Token{tok("b", 2)}), 1)
	require.Len(t, tr.Admit([]model.Token{tok("c", 3)}), 1)

	stats := tr.Stats()
	assert.Equal(t, 2, stats.Seen)
	assert.Equal(t, uint64(1), stats.Evicted)

	got := tr.Admit([]model.Token{tok("a", 4)})
	assert.Equal(t, []string{"a"}, mints(got))
}

func TestAdmit_EvictionIsFIFO(t *testing.T) {
	tr := New(3)
	tr.Admit([]model.Token{tok("a", 10), tok("b", 10), tok("c", 10)})
	tr.Admit([]model.Token{tok("d", 10)})

	// a was emitted first, so it is the one forgotten.
	got := tr.Admit([]model.Token{tok("a", 10), tok("b", 10), tok("c", 10), tok("d", 10)})
	assert.Equal(t, []string{"a"}, mints(got))
}

func TestAdmit_WithinBatchDedup(t *testing.T) {
	tr := New(10)

	first := model.Token{Mint: "a", CreationTime: 100, Name: "first"}
	second := model.Token{Mint: "a", CreationTime: 300, Name: "second"}

	got := tr.Admit([]model.Token{first, tok("b", 200), second})
	require.Len(t, got, 2)
	assert.Equal(t, []string{"b", "a"}, mints(got))
	assert.Equal(t, "first", got[1].Name)
	assert.Equal(t, int64(200), tr.Watermark())
	assert.Equal(t, 2, tr.Stats().Seen)
}

func TestAdmit_TiesKeepInputOrder(t *testing.T) {
	tr := New(10)

	got := tr.Admit([]model.Token{tok("x", 50), tok("y", 70), tok("z", 50), tok("w", 70)})
	assert.Equal(t, []string{"y", "w", "x", "z"}, mints(got))
}

func TestAdmit_MalformedFiltered(t *testing.T) {
	tr := New(10)

	got := tr.Admit([]model.Token{tok("a", 100), {Mint: "nocreation"}, {CreationTime: 300}})
	assert.Equal(t, []string{"a"}, mints(got))

	stats := tr.Stats()
	assert.Equal(t, 1, stats.Seen)
	assert.Equal(t, int64(100), stats.Watermark)
	assert.Equal(t, uint64(2), stats.Malformed)
}

func TestAdmit_OnlyMalformedLeavesTrackerPriming(t *testing.T) {
	tr := New(10)

	got := tr.Admit([]model.Token{{Mint: "a"}})
	assert.Empty(t, got)
	assert.Equal(t, StatePriming, tr.State())
	assert.Equal(t, int64(0), tr.Watermark())
}

func TestAdmit_EmptyBatch(t *testing.T) {
	tr := New(10)

	got := tr.Admit(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, StatePriming, tr.State())

	tr.Admit([]model.Token{tok("a", 1)})
	before := tr.Stats()
	tr.Admit([]model.Token{})
	assert.Equal(t, before, tr.Stats())
}

func TestAdmit_PassesPayloadThrough(t *testing.T) {
	tr := New(10)
	in := model.Token{
		Mint:         "a",
		CreationTime: 1,
		Fields:       map[string]any{"marketCap": 42.0},
	}

	got := tr.Admit([]model.Token{in})
	require.Len(t, got, 1)
	assert.Equal(t, in, got[0])
}

func TestReset(t *testing.T) {
	tr := New(10)
	batch := []model.Token{tok("a", 100), tok("b", 200)}
	tr.Admit(batch)

	tr.Reset()
	assert.Equal(t, StatePriming, tr.State())
	assert.Equal(t, int64(0), tr.Watermark())
	assert.Equal(t, 0, tr.Stats().Seen)

	got := tr.Admit(batch)
	assert.Equal(t, []string{"b", "a"}, mints(got))
}

func TestNew_DefaultBound(t *testing.T) {
	assert.Equal(t, DefaultMaxSeen, New(0).Stats().MaxSeen)
	assert.Equal(t, DefaultMaxSeen, New(-3).Stats().MaxSeen)
	assert.Equal(t, 200, New(200).Stats().MaxSeen)
}

// TestAdmit_Properties drives overlapping batches through a small tracker and
// checks the bounded-memory, monotonic-watermark and no-duplicate properties.
func TestAdmit_Properties(t *testing.T) {
	const bound = 5
	tr := New(bound)

	emitted := make(map[string]int) // mint -> call index
	var lastWatermark int64

	for call := 0; call < 40; call++ {
		var batch []model.Token
		for j := 0; j < 4; j++ {
			n := call + j
			batch = append(batch, tok(fmt.Sprintf("m%d", n), int64(100+n/2)))
		}

		got := tr.Admit(batch)

		stats := tr.Stats()
		assert.LessOrEqual(t, stats.Seen, bound)
		assert.GreaterOrEqual(t, stats.Watermark, lastWatermark)
		lastWatermark = stats.Watermark

		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].CreationTime, got[i].CreationTime)
		}
		for _, g := range got {
			prev, dup := emitted[g.Mint]
			assert.False(t, dup, "mint %s emitted in call %d and again in call %d", g.Mint, prev, call)
			emitted[g.Mint] = call
		}
	}
}

func TestAdmit_Concurrent(t *testing.T) {
	tr := New(10000)

	var mu sync.Mutex
	counts := make(map[string]int)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				got := tr.Admit([]model.Token{tok(fmt.Sprintf("m%d", i), int64(i+1))})
				mu.Lock()
				for _, g := range got {
					counts[g.Mint]++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	for mint, n := range counts {
		assert.Equal(t, 1, n, "mint %s emitted %d times", mint, n)
	}
}
