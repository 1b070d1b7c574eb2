package tracker

import (
	"sort"
	"sync"

	"github.com/solanawatchx/watchx-backend/internal/model"
)

// DefaultMaxSeen is the number of mints remembered by default.
const DefaultMaxSeen = 1000

// State is the logical tracker state.
type State string

const (
	// StatePriming means nothing has been admitted since creation or Reset.
	StatePriming State = "priming"
	// StateSteady means at least one token has been admitted.
	StateSteady State = "steady"
)

// Stats is a point-in-time view of tracker state and counters.
type Stats struct {
	State     State  `json:"state"`
	Seen      int    `json:"seen"`
	MaxSeen   int    `json:"max_seen"`
	Watermark int64  `json:"watermark"`
	Admitted  uint64 `json:"admitted"`
	Rejected  uint64 `json:"rejected"`
	Malformed uint64 `json:"malformed"`
	Evicted   uint64 `json:"evicted"`
}

// Tracker decides which tokens of a batch are new.
//
// All methods are safe for concurrent use. Admit is a read-modify-write over
// seen, order and watermark, so calls are serialized.
type Tracker struct {
	mu sync.Mutex

	maxSeen   int
	seen      map[string]struct{}
	order     []string // emission order, oldest first
	watermark int64    // newest admitted creation time

	admitted  uint64
	rejected  uint64
	malformed uint64
	evicted   uint64
}

// New creates an empty tracker remembering at most maxSeen mints.
// Non-positive values fall back to DefaultMaxSeen.
func New(maxSeen int) *Tracker {
	if maxSeen <= 0 {
		maxSeen = DefaultMaxSeen
	}
	return &Tracker{
		maxSeen: maxSeen,
		seen:    make(map[string]struct{}, maxSeen),
		order:   make([]string, 0, maxSeen),
	}
}

// Admit returns the tokens of batch that have not been emitted before,
// newest first, and records them as emitted.
//
// Tokens without a mint or creation time are dropped. Within the batch the
// first occurrence of a mint wins. Equal creation times keep input order.
func (t *Tracker) Admit(batch []model.Token) []model.Token {
	candidates := make([]model.Token, 0, len(batch))
	inBatch := make(map[string]struct{}, len(batch))
	var malformed uint64
	for _, tok := range batch {
		if !tok.Valid() {
			malformed++
			continue
		}
		if _, dup := inBatch[tok.Mint]; dup {
			continue
		}
		inBatch[tok.Mint] = struct{}{}
		candidates = append(candidates, tok)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.malformed += malformed
	if len(candidates) == 0 {
		return []model.Token{}
	}

	firstRun := len(t.seen) == 0 && t.watermark == 0

	admitted := make([]model.Token, 0, len(candidates))
	maxTime := t.watermark
	for _, tok := range candidates {
		if !firstRun && !t.isNew(tok) {
			t.rejected++
			continue
		}
		admitted = append(admitted, tok)
		if tok.CreationTime > maxTime {
			maxTime = tok.CreationTime
		}
	}

	if len(admitted) == 0 {
		return admitted
	}

	for _, tok := range admitted {
		if _, ok := t.seen[tok.Mint]; ok {
			continue
		}
		t.seen[tok.Mint] = struct{}{}
		t.order = append(t.order, tok.Mint)
	}
	t.evict()

	t.watermark = maxTime
	t.admitted += uint64(len(admitted))

	sort.SliceStable(admitted, func(i, j int) bool {
		return admitted[i].CreationTime > admitted[j].CreationTime
	})

	return admitted
}

// Reset forgets everything and returns the tracker to priming.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seen = make(map[string]struct{}, t.maxSeen)
	t.order = make([]string, 0, t.maxSeen)
	t.watermark = 0
}

// State reports whether the tracker is still priming.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

// Watermark returns the newest admitted creation time.
func (t *Tracker) Watermark() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.watermark
}

// Stats returns current state and counters.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		State:     t.stateLocked(),
		Seen:      len(t.seen),
		MaxSeen:   t.maxSeen,
		Watermark: t.watermark,
		Admitted:  t.admitted,
		Rejected:  t.rejected,
		Malformed: t.malformed,
		Evicted:   t.evicted,
	}
}

// isNew applies the steady-state admission rule. Must be called with lock held.
func (t *Tracker) isNew(tok model.Token) bool {
	if tok.CreationTime > t.watermark {
		return true
	}
	if tok.CreationTime == t.watermark {
		_, seen := t.seen[tok.Mint]
		return !seen
	}
	return false
}

// evict drops the oldest emitted mints until the bound holds. Must be called with lock held.
func (t *Tracker) evict() {
	over := len(t.order) - t.maxSeen
	if over <= 0 {
		return
	}
	for _, mint := range t.order[:over] {
		delete(t.seen, mint)
	}
	// Copy down so the backing array does not grow without bound.
	n := copy(t.order, t.order[over:])
	clear(t.order[n:])
	t.order = t.order[:n]
	t.evicted += uint64(over)
}

func (t *Tracker) stateLocked() State {
	if len(t.seen) == 0 && t.watermark == 0 {
		return StatePriming
	}
	return StateSteady
}
