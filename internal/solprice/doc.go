// Package solprice serves the SOL/USD price from pump.fun behind a short TTL
// cache.
//
// Concurrent misses share one upstream request. When a refresh fails the
// last good price is served and marked stale.
package solprice
