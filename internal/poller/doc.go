// Package poller implements the Feed Poller component.
//
// The Feed Poller:
//   - Polls the pump.fun listing every few seconds (default 5s)
//   - Runs each batch through the Freshness Tracker
//   - Hands only newly admitted tokens to the registered handlers
//     (live feed, WebSocket stream, Supabase writer)
//   - Tags each cycle with a UUID for logs and persisted rows
package poller
