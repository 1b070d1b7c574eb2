package feed

import (
	"context"
	"sync"

	"github.com/solanawatchx/watchx-backend/internal/metrics"
	"github.com/solanawatchx/watchx-backend/internal/model"
)

// DefaultMaxTokens is the number of tokens kept when none is configured.
const DefaultMaxTokens = 200

// Feed is a bounded, newest-first list of admitted tokens.
type Feed struct {
	mu      sync.RWMutex
	max     int
	tokens  []model.Token // newest first
	metrics *metrics.Metrics
}

// New creates an empty feed holding at most maxTokens tokens.
func New(maxTokens int) *Feed {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Feed{
		max:    maxTokens,
		tokens: make([]model.Token, 0, maxTokens),
	}
}

// Instrument reports the feed size to m after every change.
func (f *Feed) Instrument(m *metrics.Metrics) *Feed {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metrics = m
	return f
}

// Name identifies the feed as a token handler.
func (f *Feed) Name() string { return "feed" }

// HandleTokens prepends a newest-first batch and trims the oldest tokens.
// A mint already in the feed keeps its position and takes the new payload.
func (f *Feed) HandleTokens(_ context.Context, batch []model.Token) error {
	if len(batch) == 0 {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	pos := make(map[string]int, len(f.tokens))
	for i, t := range f.tokens {
		pos[t.Mint] = i
	}

	fresh := make([]model.Token, 0, len(batch))
	for _, t := range batch {
		if i, ok := pos[t.Mint]; ok {
			if i >= 0 {
				f.tokens[i] = t
			}
			continue
		}
		pos[t.Mint] = -1
		fresh = append(fresh, t)
	}

	n := len(fresh) + len(f.tokens)
	if n > f.max {
		n = f.max
	}
	next := make([]model.Token, 0, len(fresh)+len(f.tokens))
	next = append(next, fresh...)
	next = append(next, f.tokens...)
	f.tokens = next[:n]
	f.metrics.SetFeedSize(len(f.tokens))
	return nil
}

// Snapshot returns up to limit tokens, newest first. limit <= 0 returns all.
func (f *Feed) Snapshot(limit int) []model.Token {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n := len(f.tokens)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.Token, n)
	copy(out, f.tokens[:n])
	return out
}

// Len returns the number of tokens held.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.tokens)
}

// Clear drops all tokens.
func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = f.tokens[:0]
	f.metrics.SetFeedSize(0)
}
