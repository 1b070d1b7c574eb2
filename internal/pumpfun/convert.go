package pumpfun

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/solanawatchx/watchx-backend/internal/model"
)

// Field names seen for the same value across listing versions, in lookup order.
var (
	mintKeys     = []string{"mint", "coinMint", "tokenMint", "address"}
	creationKeys = []string{"creationTime", "created_timestamp", "createdAt"}
	imageKeys    = []string{"imageUrl", "image", "image_uri"}
	nameKeys     = []string{"name"}
	tickerKeys   = []string{"ticker", "symbol"}
)

// secondsCutoff separates second-resolution timestamps from millisecond ones.
const secondsCutoff = 1_000_000_000_000

// Normalize converts a raw listing object into a model.Token.
// Missing or unparseable fields are left at their zero value; the tracker
// drops tokens that end up without a mint or creation time.
func Normalize(raw map[string]any) model.Token {
	return model.Token{
		Mint:         firstString(raw, mintKeys),
		CreationTime: firstMillis(raw, creationKeys),
		Name:         firstString(raw, nameKeys),
		Ticker:       firstString(raw, tickerKeys),
		ImageURL:     firstString(raw, imageKeys),
		Fields:       raw,
	}
}

// NormalizeAll converts a page of raw listing objects.
func NormalizeAll(raw []map[string]any) []model.Token {
	tokens := make([]model.Token, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			continue
		}
		tokens = append(tokens, Normalize(r))
	}
	return tokens
}

func firstString(raw map[string]any, keys []string) string {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func firstMillis(raw map[string]any, keys []string) int64 {
	for _, k := range keys {
		if ms, ok := toMillis(raw[k]); ok {
			return ms
		}
	}
	return 0
}

// toMillis parses a timestamp given as a JSON number or numeric string.
func toMillis(v any) (int64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case int64:
		f = float64(n)
	case int:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}

	ms := int64(f)
	if ms < secondsCutoff {
		ms *= 1000
	}
	return ms, true
}
