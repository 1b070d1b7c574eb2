package pumpfun

import (
	"net/url"
	"strconv"
)

// Listing sort keys.
const (
	SortByCreationTime = "creationTime"
	SortByMarketCap    = "marketCap"
)

// ListOptions configures a ListCoins request.
type ListOptions struct {
	SortBy    string
	Limit     int
	Offset    int
	Graduated bool
}

// Named listing presets served by the frontend.
var (
	// ScanList returns the newest coins first.
	ScanList = ListOptions{SortBy: SortByCreationTime, Limit: 100}

	// MarketCapList returns the largest coins first.
	MarketCapList = ListOptions{SortBy: SortByMarketCap, Limit: 100}

	// GraduatedList returns the newest graduated coins first.
	GraduatedList = ListOptions{SortBy: SortByCreationTime, Limit: 100, Graduated: true}
)

// Preset returns a named listing preset.
func Preset(name string) (ListOptions, bool) {
	switch name {
	case "scan", "":
		return ScanList, true
	case "byMarketCap", "marketcap":
		return MarketCapList, true
	case "graduated":
		return GraduatedList, true
	}
	return ListOptions{}, false
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.SortBy != "" {
		q.Set("sortBy", o.SortBy)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	q.Set("offset", strconv.Itoa(o.Offset))
	if o.Graduated {
		q.Set("graduated", "true")
	}
	return q
}

// listEnvelope covers the wrapped listing shapes ({"coins": [...]} and {"data": [...]}).
type listEnvelope struct {
	Coins []map[string]any `json:"coins"`
	Data  []map[string]any `json:"data"`
}
