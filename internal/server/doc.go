// Package server exposes the backend over HTTP.
//
// Routes:
//   - GET  /                      liveness text
//   - GET  /health                component status (503 if the database is down)
//   - GET  /live-tokens           newest admitted tokens, image URLs relayed
//   - GET  /live-tokens/stream    WebSocket push of admitted batches
//   - GET  /image-proxy           image relay
//   - GET  /sol-price             cached SOL price (alias /live-sol-price)
//   - GET  /solana-news           cached news digest
//   - POST /refresh-solana-news   refresh the news digest (shared secret,
//     alias /refresh-solan-news)
//   - GET  /metrics               Prometheus metrics
//   - GET  /debug/tracker         tracker stats (debug only)
//   - POST /debug/tracker/reset   reset the tracker and clear the feed (debug only)
//
// Every response passes through the CORS middleware.
package server
