// Package tracker implements the Freshness Tracker.
//
// The Freshness Tracker:
//   - Filters each polled batch down to tokens not emitted before
//   - Remembers the last N emitted mints (FIFO eviction)
//   - Keeps a creation-time watermark to reject older tokens cheaply
//   - Emits the first snapshot unconditionally (priming)
//
// State lives for the lifetime of the process and is never persisted; a
// restart starts priming again.
package tracker
