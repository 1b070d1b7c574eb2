// Package stream implements the live token WebSocket stream.
//
// The stream hub:
//   - Upgrades browser connections on /live-tokens/stream
//   - Pushes every admitted batch as a {"type":"tokens"} message
//   - Keeps connections alive with server-side pings
//   - Drops clients whose send buffer fills up
package stream
