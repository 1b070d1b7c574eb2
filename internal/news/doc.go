// Package news maintains the cached Solana news digest.
//
// A Fetcher asks a chat-completions endpoint for the latest Solana headlines
// as a JSON array. The result is written to a file-backed Store only when an
// operator calls the refresh endpoint with the shared secret; readers are
// always served from the store.
package news
