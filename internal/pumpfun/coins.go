package pumpfun

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/solanawatchx/watchx-backend/internal/model"
)

// ListCoins fetches one page of the coin listing as raw upstream objects.
//
// The endpoint has answered with a bare array, {"coins": [...]} and
// {"data": [...]} at different times; all three are accepted.
func (c *Client) ListCoins(ctx context.Context, opts ListOptions) ([]map[string]any, error) {
	body, err := c.fetchWithRetry(ctx, "/coins/list", opts.query())
	if err != nil {
		return nil, fmt.Errorf("list coins: %w", err)
	}

	coins, err := decodeCoinList(body)
	if err != nil {
		return nil, fmt.Errorf("list coins: %w", err)
	}
	return coins, nil
}

// ListTokens fetches one page of the coin listing and normalizes it.
func (c *Client) ListTokens(ctx context.Context, opts ListOptions) ([]model.Token, error) {
	coins, err := c.ListCoins(ctx, opts)
	if err != nil {
		return nil, err
	}
	return NormalizeAll(coins), nil
}

// GetSolPrice fetches the current SOL price payload.
func (c *Client) GetSolPrice(ctx context.Context) (map[string]any, error) {
	body, err := c.fetchWithRetry(ctx, "/sol-price", nil)
	if err != nil {
		return nil, fmt.Errorf("get sol price: %w", err)
	}

	var payload map[string]any
	if err := decodeJSON(body, &payload); err != nil {
		return nil, fmt.Errorf("get sol price: unmarshal response: %w", err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

func decodeCoinList(body []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var coins []map[string]any
		if err := decodeJSON(trimmed, &coins); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
		return coins, nil
	}

	var env listEnvelope
	if err := decodeJSON(trimmed, &env); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if env.Coins != nil {
		return env.Coins, nil
	}
	return env.Data, nil
}

// decodeJSON keeps numbers as json.Number so upstream values pass through untouched.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
