package news

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// Source produces a fresh digest.
type Source interface {
	Fetch(ctx context.Context) ([]Item, error)
}

// Handler serves the news endpoints.
type Handler struct {
	store      *Store
	source     Source
	refreshKey string
	logger     *slog.Logger
}

// NewHandler creates a Handler. An empty refreshKey rejects every refresh.
func NewHandler(store *Store, source Source, refreshKey string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:      store,
		source:     source,
		refreshKey: refreshKey,
		logger:     logger,
	}
}

type refreshRequest struct {
	Key string `json:"key"`
}

// Get serves GET /solana-news.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.Load()
	switch {
	case errors.Is(err, ErrNotReady):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Cache not ready, please refresh first."})
	case err != nil:
		h.logger.Error("failed to read news cache", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to read cache"})
	default:
		writeJSON(w, http.StatusOK, items)
	}
}

// Refresh serves POST /refresh-solana-news.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	// A malformed body is treated like a missing key.
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req)

	if !h.authorized(req.Key) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	items, err := h.source.Fetch(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch news", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to refresh cache"})
		return
	}
	if err := h.store.Save(items); err != nil {
		h.logger.Error("failed to write news cache", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to refresh cache"})
		return
	}

	h.logger.Info("news cache refreshed", "items", len(items))
	writeJSON(w, http.StatusOK, map[string]any{"message": "Cache refreshed!", "data": items})
}

func (h *Handler) authorized(key string) bool {
	if key == "" || h.refreshKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(h.refreshKey)) == 1
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
