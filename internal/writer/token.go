package writer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/solanawatchx/watchx-backend/internal/metrics"
	"github.com/solanawatchx/watchx-backend/internal/model"
	"github.com/solanawatchx/watchx-backend/internal/poller"
)

const insertToken = `
	INSERT INTO live_tokens (mint, name, ticker, image_url, creation_time, payload, poll_id, received_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (mint) DO NOTHING
`

// DB is the subset of *pgxpool.Pool the writer needs.
type DB interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// tokenRow is one live_tokens row.
type tokenRow struct {
	Mint         string
	Name         string
	Ticker       string
	ImageURL     string
	CreationTime int64
	Payload      []byte
	PollID       uuid.UUID
	ReceivedAt   time.Time
}

// TokenWriter batches admitted tokens into the live_tokens table.
type TokenWriter struct {
	cfg     WriterConfig
	db      DB
	prom    *metrics.Metrics
	logger  *slog.Logger
	nowFunc func() time.Time

	// Batching
	batch   []tokenRow
	batchMu sync.Mutex
	full    chan struct{}

	// Serializes flushes so batches land in admission order.
	flushMu sync.Mutex

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metrics WriterMetrics
}

// NewTokenWriter creates a new TokenWriter.
func NewTokenWriter(cfg WriterConfig, db DB, m *metrics.Metrics, logger *slog.Logger) *TokenWriter {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultWriterConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	return &TokenWriter{
		cfg:     cfg,
		db:      db,
		prom:    m,
		logger:  logger,
		nowFunc: time.Now,
		batch:   make([]tokenRow, 0, cfg.BatchSize),
		full:    make(chan struct{}, 1),
	}
}

// Name implements poller.TokenHandler.
func (w *TokenWriter) Name() string { return "writer" }

// HandleTokens queues an admitted batch. It never blocks on the database.
func (w *TokenWriter) HandleTokens(ctx context.Context, tokens []model.Token) error {
	if len(tokens) == 0 {
		return nil
	}

	pollID := poller.CycleID(ctx)
	receivedAt := w.nowFunc()

	rows := make([]tokenRow, 0, len(tokens))
	for _, t := range tokens {
		row, err := w.transform(t, pollID, receivedAt)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	w.batchMu.Lock()
	w.batch = append(w.batch, rows...)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		select {
		case w.full <- struct{}{}:
		default:
		}
	}
	return nil
}

// Start begins the flush loop.
func (w *TokenWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("token writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer, flushing pending rows with ctx.
func (w *TokenWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping token writer")

	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("token writer stopped")
	case <-ctx.Done():
		w.logger.Warn("token writer stop timed out")
	}

	// Final flush
	w.flush(ctx)

	return nil
}

// Stats returns current metrics.
func (w *TokenWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// Pending returns the number of queued rows.
func (w *TokenWriter) Pending() int {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return len(w.batch)
}

// flushLoop flushes on interval or when a batch fills up.
func (w *TokenWriter) flushLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.flush(w.ctx)
		case <-w.full:
			w.flush(w.ctx)
		}
	}
}

// transform converts an admitted token to a row.
func (w *TokenWriter) transform(t model.Token, pollID uuid.UUID, receivedAt time.Time) (tokenRow, error) {
	payload, err := json.Marshal(t)
	if err != nil {
		return tokenRow{}, err
	}
	return tokenRow{
		Mint:         t.Mint,
		Name:         t.Name,
		Ticker:       t.Ticker,
		ImageURL:     t.ImageURL,
		CreationTime: t.CreationTime,
		Payload:      payload,
		PollID:       pollID,
		ReceivedAt:   receivedAt,
	}, nil
}

// flush writes the current batch to the database.
func (w *TokenWriter) flush(ctx context.Context) {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]tokenRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	conflicts, err := w.batchInsert(ctx, batch)
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		w.prom.RecordWrite(0, 0, len(batch))
		return
	}

	inserted := len(batch) - conflicts
	w.batchMu.Lock()
	w.metrics.Inserts += int64(inserted)
	w.metrics.Conflicts += int64(conflicts)
	w.metrics.Flushes++
	w.batchMu.Unlock()
	w.prom.RecordWrite(inserted, conflicts, 0)

	w.logger.Debug("flushed tokens",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *TokenWriter) batchInsert(ctx context.Context, rows []tokenRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(insertToken,
			r.Mint, nullable(r.Name), nullable(r.Ticker), nullable(r.ImageURL),
			r.CreationTime, r.Payload, pollIDArg(r.PollID), r.ReceivedAt,
		)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func pollIDArg(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id.String()
}
