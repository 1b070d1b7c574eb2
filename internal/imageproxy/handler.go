package imageproxy

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/solanawatchx/watchx-backend/internal/metrics"
)

// CacheControl is sent with every relayed image.
const CacheControl = "public, max-age=3600, stale-while-revalidate=30"

// Config holds relay configuration.
type Config struct {
	Timeout   time.Duration // Upstream fetch timeout (default: 15s)
	Gateway   string        // IPFS gateway prefix (default: DefaultGateway)
	UserAgent string        // Sent upstream; some CDNs reject bare clients
}

// Handler serves GET /image-proxy?url=<encoded-url>.
type Handler struct {
	cfg        Config
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewHandler creates a relay handler.
func NewHandler(cfg Config, m *metrics.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Gateway == "" {
		cfg.Gateway = DefaultGateway
	}
	return &Handler{
		cfg: cfg,
		// Redirects are followed by default.
		httpClient: &http.Client{Timeout: cfg.Timeout},
		metrics:    m,
		logger:     logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target, err := resolveTarget(r.URL.Query().Get("url"), h.cfg.Gateway)
	if err != nil {
		msg := "Missing url param"
		if errors.Is(err, ErrUnsupportedScheme) {
			msg = "Unsupported URL scheme"
		}
		h.fail(w, http.StatusBadRequest, msg)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		h.logger.Error("image proxy request build failed", "target", target, "err", err)
		h.fail(w, http.StatusInternalServerError, "Image proxy failed")
		return
	}
	if h.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", h.cfg.UserAgent)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.logger.Error("image proxy error", "target", target, "err", err)
		h.fail(w, http.StatusInternalServerError, "Image proxy failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		h.logger.Warn("image proxy upstream non-ok", "status", resp.StatusCode, "target", target)
		h.fail(w, http.StatusBadGateway, "Failed to fetch image")
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", CacheControl)
	w.WriteHeader(http.StatusOK)
	h.metrics.RecordImageProxy(http.StatusOK)

	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Debug("image proxy stream interrupted", "target", target, "err", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, code int, msg string) {
	h.metrics.RecordImageProxy(code)
	http.Error(w, msg, code)
}
