// Package imageproxy relays token images through the backend.
//
// Upstream image references come in several shapes: direct http(s) URLs,
// ipfs:// URIs and images.pump.fun wrappers carrying the real location in a
// src or ipfs query parameter. ResolveTarget reduces all of them to a plain
// http(s) URL and Handler streams the bytes back with a short cache policy.
package imageproxy
