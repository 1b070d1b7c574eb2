package writer

import "time"

// WriterConfig holds batching configuration.
type WriterConfig struct {
	BatchSize     int           // Rows per flush (default: 100)
	FlushInterval time.Duration // Max time between flushes (default: 2s)
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     100,
		FlushInterval: 2 * time.Second,
	}
}

// WriterMetrics tracks writer counters.
type WriterMetrics struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
}
