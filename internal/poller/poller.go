package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/solanawatchx/watchx-backend/internal/metrics"
	"github.com/solanawatchx/watchx-backend/internal/model"
	"github.com/solanawatchx/watchx-backend/internal/pumpfun"
	"github.com/solanawatchx/watchx-backend/internal/tracker"
)

// TokenSource fetches one page of normalized tokens.
type TokenSource interface {
	ListTokens(ctx context.Context, opts pumpfun.ListOptions) ([]model.Token, error)
}

// Admitter filters a batch down to tokens not seen before.
type Admitter interface {
	Admit(batch []model.Token) []model.Token
	Stats() tracker.Stats
}

// TokenHandler receives admitted tokens, newest first.
type TokenHandler interface {
	Name() string
	HandleTokens(ctx context.Context, batch []model.Token) error
}

// TokenHandlerFunc is a function adapter for TokenHandler.
type TokenHandlerFunc func(context.Context, []model.Token) error

func (f TokenHandlerFunc) Name() string { return "func" }

func (f TokenHandlerFunc) HandleTokens(ctx context.Context, batch []model.Token) error {
	return f(ctx, batch)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration       // Poll interval (default: 5s)
	Timeout  time.Duration       // Per-request timeout (default: 10s)
	List     pumpfun.ListOptions // Listing to poll
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 5 * time.Second,
		Timeout:  10 * time.Second,
		List:     pumpfun.ScanList,
	}
}

type cycleKey struct{}

// CycleID returns the poll cycle ID carried by ctx, or uuid.Nil.
func CycleID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(cycleKey{}).(uuid.UUID)
	return id
}

// WithCycleID returns a context carrying the given poll cycle ID.
func WithCycleID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, cycleKey{}, id)
}

// Poller periodically fetches the listing and forwards new tokens.
type Poller struct {
	cfg      Config
	source   TokenSource
	tracker  Admitter
	handlers []TokenHandler
	metrics  *metrics.Metrics
	logger   *slog.Logger

	// Serializes cycles so handlers see batches in admission order.
	cycleMu sync.Mutex

	statsMu   sync.RWMutex
	lastPoll  time.Time
	lastError error

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, source TokenSource, tr Admitter, m *metrics.Metrics, logger *slog.Logger, handlers ...TokenHandler) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:      cfg,
		source:   source,
		tracker:  tr,
		handlers: handlers,
		metrics:  m,
		logger:   logger,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("feed poller started",
		"interval", p.cfg.Interval,
		"sort_by", p.cfg.List.SortBy,
		"limit", p.cfg.List.Limit,
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("feed poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LastPoll returns the time of the last successful poll and the last error.
func (p *Poller) LastPoll() (time.Time, error) {
	p.statsMu.RLock()
	defer p.statsMu.RUnlock()
	return p.lastPoll, p.lastError
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.poll()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *Poller) poll() {
	if _, err := p.PollOnce(p.ctx); err != nil && p.ctx.Err() == nil {
		p.logger.Warn("poll cycle failed", "err", err)
	}
}

// PollOnce runs a single cycle: fetch, admit, hand off. It returns the
// admitted tokens. Handler failures are logged and do not fail the cycle;
// admission is already committed by then.
func (p *Poller) PollOnce(ctx context.Context) ([]model.Token, error) {
	p.cycleMu.Lock()
	defer p.cycleMu.Unlock()

	start := time.Now()
	cycleID := uuid.New()
	ctx = WithCycleID(ctx, cycleID)

	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	batch, err := p.source.ListTokens(fetchCtx, p.cfg.List)
	cancel()
	if err != nil {
		p.setResult(time.Time{}, err)
		p.metrics.RecordPoll("error", time.Since(start), 0, 0)
		return nil, fmt.Errorf("fetch listing: %w", err)
	}

	admitted := p.tracker.Admit(batch)
	stats := p.tracker.Stats()
	p.metrics.RecordTracker(stats.Seen, stats.Watermark)

	if len(admitted) > 0 {
		for _, h := range p.handlers {
			if err := h.HandleTokens(ctx, admitted); err != nil {
				p.metrics.RecordHandlerError(h.Name())
				p.logger.Warn("token handler failed",
					"handler", h.Name(),
					"cycle", cycleID,
					"count", len(admitted),
					"err", err,
				)
			}
		}
	}

	p.setResult(time.Now(), nil)
	p.metrics.RecordPoll("ok", time.Since(start), len(batch), len(admitted))

	p.logger.Debug("poll cycle complete",
		"cycle", cycleID,
		"fetched", len(batch),
		"admitted", len(admitted),
		"state", stats.State,
		"watermark", stats.Watermark,
		"duration", time.Since(start),
	)

	return admitted, nil
}

func (p *Poller) setResult(at time.Time, err error) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	if err != nil {
		p.lastError = err
		return
	}
	p.lastPoll = at
	p.lastError = nil
}
