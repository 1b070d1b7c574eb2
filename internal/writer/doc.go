// Package writer persists admitted tokens to Postgres (Supabase).
//
// TokenWriter is registered as a poller handler. Rows are buffered and
// flushed as one pgx.Batch when the batch fills or the flush interval
// elapses. Inserts are append-only: ON CONFLICT (mint) DO NOTHING, so a
// mint re-admitted after tracker eviction or a restart is counted as a
// conflict rather than an error.
//
// A failed flush is logged and counted. The rows are dropped and never fed
// back into the tracker.
package writer
