package news

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultPrompt asks for the digest in the shape Item decodes.
const DefaultPrompt = `Give me latest 3 Solana news updates in JSON array format with fields:
title, content, source_url, event_date.`

// ErrEmptyCompletion is returned when the completion carries no choices.
var ErrEmptyCompletion = errors.New("completion has no choices")

// Item is one news entry.
type Item struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	SourceURL string `json:"source_url"`
	EventDate string `json:"event_date"`
}

// FetcherConfig holds chat-completions settings.
type FetcherConfig struct {
	Endpoint string
	Model    string
	APIKey   string
	Prompt   string
	Timeout  time.Duration
}

// Fetcher requests a news digest from a chat-completions API.
type Fetcher struct {
	cfg        FetcherConfig
	httpClient *http.Client
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Fetcher{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Fetch requests and parses a fresh digest.
func (f *Fetcher) Fetch(ctx context.Context) ([]Item, error) {
	body, err := json.Marshal(chatRequest{
		Model:    f.cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: f.cfg.Prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.cfg.APIKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("completions api error %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var completion chatResponse
	if err := json.Unmarshal(data, &completion); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	return ParseItems(completion.Choices[0].Message.Content)
}

// ParseItems decodes a JSON array of items, tolerating ```json fences.
func ParseItems(text string) ([]Item, error) {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	var items []Item
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("parse news items: %w", err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}
