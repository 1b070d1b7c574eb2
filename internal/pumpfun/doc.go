// Package pumpfun provides the pump.fun REST client.
//
// Endpoints:
//   - Coin listing: https://advanced-api-v2.pump.fun/coins/list
//   - SOL price:    https://frontend-api-v3.pump.fun/sol-price
//
// Listing responses are not stable in shape; see ListCoins and Normalize.
package pumpfun
