// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Poll cycles, upstream errors and poll latency
//   - Tracker admissions, rejections and malformed records
//   - Live feed size and stream subscribers
//   - Token writer inserts, conflicts and errors
//   - Image relay and SOL price cache outcomes
package metrics
