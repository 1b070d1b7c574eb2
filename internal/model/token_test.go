package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_Valid(t *testing.T) {
	tests := []struct {
		name string
		tok  Token
		want bool
	}{
		{"complete", Token{Mint: "abc", CreationTime: 1}, true},
		{"missing mint", Token{CreationTime: 1}, false},
		{"missing creation time", Token{Mint: "abc"}, false},
		{"negative creation time", Token{Mint: "abc", CreationTime: -5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tok.Valid())
		})
	}
}

func TestToken_MarshalJSON(t *testing.T) {
	tok := Token{
		Mint:         "So1aNa",
		CreationTime: 1718000000000,
		Name:         "Dog Wif Hat",
		ImageURL:     "https://example.com/image-proxy?url=x",
		Fields: map[string]any{
			"coinMint":  "So1aNa",
			"marketCap": 12345.6,
			"imageUrl":  "ipfs://Qm123",
			"twitter":   "https://x.com/dog",
		},
	}

	data, err := json.Marshal(tok)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "So1aNa", got["mint"])
	assert.Equal(t, "So1aNa", got["coinMint"])
	assert.Equal(t, float64(1718000000000), got["creationTime"])
	assert.Equal(t, "Dog Wif Hat", got["name"])
	assert.Equal(t, 12345.6, got["marketCap"])
	assert.Equal(t, "https://x.com/dog", got["twitter"])
	assert.Equal(t, "https://example.com/image-proxy?url=x", got["imageUrl"])

	// The source payload must not be modified by marshalling.
	assert.Equal(t, "ipfs://Qm123", tok.Fields["imageUrl"])
}

func TestToken_MarshalJSON_NoImage(t *testing.T) {
	data, err := json.Marshal(Token{Mint: "m", CreationTime: 1})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	v, ok := got["imageUrl"]
	assert.True(t, ok)
	assert.Nil(t, v)
}
