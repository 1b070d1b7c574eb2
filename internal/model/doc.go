// Package model defines shared data types used across the WatchX backend.
//
// Conventions:
//   - Timestamps: int64 milliseconds since Unix epoch (pump.fun native resolution)
//   - IDs: the token mint address as a base58 string
//   - Upstream payload fields are carried verbatim in Token.Fields
package model
