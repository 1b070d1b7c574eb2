package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/solanawatchx/watchx-backend/internal/imageproxy"
	"github.com/solanawatchx/watchx-backend/internal/metrics"
	"github.com/solanawatchx/watchx-backend/internal/model"
	"github.com/solanawatchx/watchx-backend/internal/tracker"
	"github.com/solanawatchx/watchx-backend/internal/version"
)

// Config holds HTTP surface settings.
type Config struct {
	AllowedOrigins []string
	PublicHost     string // Host for relayed image URLs; request Host if empty
	Debug          bool   // Mount /debug/tracker routes
	MetricsPath    string // Default: /metrics
}

// Feed is the live token list.
type Feed interface {
	Snapshot(limit int) []model.Token
	Len() int
	Clear()
}

// Tracker is the freshness tracker as seen by the debug and health routes.
type Tracker interface {
	Stats() tracker.Stats
	Reset()
}

// PollStatus reports the last poll outcome.
type PollStatus interface {
	LastPoll() (time.Time, error)
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewsHandler serves the news routes.
type NewsHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
}

// Deps are the components behind the routes. Nil optional fields leave
// their routes unmounted or their health component unreported.
type Deps struct {
	Feed       Feed         // required
	Tracker    Tracker      // required
	ImageProxy http.Handler // required
	SolPrice   http.Handler // required
	Poller     PollStatus
	Stream     http.Handler
	News       NewsHandler
	Database   Pinger
	Metrics    *metrics.Metrics
}

// Server routes HTTP requests to the backend components.
type Server struct {
	cfg    Config
	deps   Deps
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Server.
func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	return &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		now:    time.Now,
	}
}

// Handler returns the routed handler wrapped in CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /live-tokens", s.handleLiveTokens)
	mux.Handle("GET /image-proxy", s.deps.ImageProxy)
	mux.Handle("GET /sol-price", s.deps.SolPrice)
	mux.Handle("GET /live-sol-price", s.deps.SolPrice)

	if s.deps.Stream != nil {
		mux.Handle("GET /live-tokens/stream", s.deps.Stream)
	}
	if s.deps.News != nil {
		mux.HandleFunc("GET /solana-news", s.deps.News.Get)
		mux.HandleFunc("POST /refresh-solana-news", s.deps.News.Refresh)
		// Older frontends post to the misspelled path.
		mux.HandleFunc("POST /refresh-solan-news", s.deps.News.Refresh)
	}
	if s.deps.Metrics != nil {
		mux.Handle("GET "+s.cfg.MetricsPath, s.deps.Metrics.Handler())
	}
	if s.cfg.Debug {
		mux.HandleFunc("GET /debug/tracker", s.handleTrackerStats)
		mux.HandleFunc("POST /debug/tracker/reset", s.handleTrackerReset)
	}

	return cors(s.cfg.AllowedOrigins, mux)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("SolanaWatchX API is running"))
}

func (s *Server) handleLiveTokens(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	host := s.cfg.PublicHost
	if host == "" {
		host = r.Host
	}

	tokens := s.deps.Feed.Snapshot(limit)
	for i, t := range tokens {
		tokens[i] = t.WithImageURL(imageproxy.RewriteURL(host, t.ImageURL))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tokens":    tokens,
		"timestamp": s.now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := struct {
		Status     string         `json:"status"`
		Version    string         `json:"version"`
		Components map[string]any `json:"components"`
	}{
		Status:     "healthy",
		Version:    version.Version,
		Components: make(map[string]any),
	}

	stats := s.deps.Tracker.Stats()
	health.Components["tracker"] = map[string]any{
		"state":     stats.State,
		"seen":      stats.Seen,
		"watermark": stats.Watermark,
	}
	health.Components["feed"] = map[string]any{
		"tokens": s.deps.Feed.Len(),
	}

	if s.deps.Poller != nil {
		last, err := s.deps.Poller.LastPoll()
		poll := map[string]any{}
		if !last.IsZero() {
			poll["last_poll"] = last.UTC().Format(time.RFC3339)
		}
		if err != nil {
			poll["error"] = err.Error()
			health.Status = "degraded"
		}
		health.Components["poller"] = poll
	}

	if s.deps.Database != nil {
		if err := s.deps.Database.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["database"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["database"] = "connected"
		}
	}

	code := http.StatusOK
	if health.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, health)
}

func (s *Server) handleTrackerStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Tracker.Stats())
}

// handleTrackerReset returns the pipeline to its startup state: the tracker
// primes again on the next poll and the feed refills from that cycle.
func (s *Server) handleTrackerReset(w http.ResponseWriter, r *http.Request) {
	s.deps.Tracker.Reset()
	s.deps.Feed.Clear()
	s.logger.Warn("tracker reset via debug endpoint", "remote", r.RemoteAddr)
	writeJSON(w, http.StatusOK, s.deps.Tracker.Stats())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
