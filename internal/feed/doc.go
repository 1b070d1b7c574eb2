// Package feed keeps the most recent admitted tokens for the /live-tokens
// endpoint and the stream snapshot.
//
// The feed is bounded and ordered by admission, newest first. Each mint
// appears at most once.
package feed
