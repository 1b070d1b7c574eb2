package model

import "encoding/json"

// Token is one entry from the upstream listing feed.
//
// Mint and CreationTime are the only fields the backend interprets. Fields
// holds the upstream object as received and is passed through to clients
// unchanged, apart from the image reference which the host rewrites.
type Token struct {
	Mint         string         // Mint address, unique key
	CreationTime int64          // Creation time (ms since epoch), 0 if unknown
	Name         string         // Display name
	Ticker       string         // Symbol
	ImageURL     string         // Image reference as served to clients
	Fields       map[string]any // Opaque upstream payload
}

// Valid reports whether the token can take part in ordering and dedup.
func (t Token) Valid() bool {
	return t.Mint != "" && t.CreationTime > 0
}

// WithImageURL returns a copy of t with its image reference replaced.
func (t Token) WithImageURL(u string) Token {
	t.ImageURL = u
	return t
}

// MarshalJSON emits the upstream payload with the normalized keys applied on top.
func (t Token) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.Fields)+4)
	for k, v := range t.Fields {
		out[k] = v
	}

	out["mint"] = t.Mint
	out["creationTime"] = t.CreationTime
	if t.Name != "" {
		out["name"] = t.Name
	}
	if t.Ticker != "" {
		out["ticker"] = t.Ticker
	}
	if t.ImageURL != "" {
		out["imageUrl"] = t.ImageURL
	} else {
		out["imageUrl"] = nil
	}

	return json.Marshal(out)
}
