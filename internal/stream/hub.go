package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/solanawatchx/watchx-backend/internal/imageproxy"
	"github.com/solanawatchx/watchx-backend/internal/metrics"
	"github.com/solanawatchx/watchx-backend/internal/model"
)

// ErrHubClosed is returned when upgrading after Close.
var ErrHubClosed = errors.New("stream hub closed")

// Config holds hub configuration.
type Config struct {
	PingInterval time.Duration // Server ping period (default: 30s)
	WriteTimeout time.Duration // Per-write deadline (default: 10s)
	SendBuffer   int           // Queued messages per client (default: 16)
	PublicHost   string        // Host for relayed image URLs; upgrade request Host if empty
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PingInterval: 30 * time.Second,
		WriteTimeout: 10 * time.Second,
		SendBuffer:   16,
	}
}

// Message is the frame pushed to clients.
type Message struct {
	Type   string        `json:"type"`
	Tokens []model.Token `json:"tokens"`
}

// Message types.
const (
	TypeSnapshot = "snapshot"
	TypeTokens   = "tokens"
)

// SnapshotFunc returns the tokens sent to a client right after it connects.
type SnapshotFunc func() []model.Token

type client struct {
	conn *websocket.Conn
	host string // host used to relay image URLs
	send chan []byte
}

// Hub fans admitted tokens out to connected WebSocket clients.
type Hub struct {
	cfg      Config
	upgrader websocket.Upgrader
	snapshot SnapshotFunc
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates a new Hub. snapshot may be nil.
func NewHub(cfg Config, snapshot SnapshotFunc, m *metrics.Metrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = def.SendBuffer
	}

	return &Hub{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Origin policy matches the REST CORS fallback.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		snapshot: snapshot,
		metrics:  m,
		logger:   logger,
		clients:  make(map[*client]struct{}),
	}
}

// Name implements poller.TokenHandler.
func (h *Hub) Name() string { return "stream" }

// HandleTokens broadcasts an admitted batch to every client.
func (h *Hub) HandleTokens(ctx context.Context, batch []model.Token) error {
	if len(batch) == 0 {
		return nil
	}
	return h.broadcast(batch)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and registers the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	host := h.cfg.PublicHost
	if host == "" {
		host = r.Host
	}
	c := &client{
		conn: conn,
		host: host,
		send: make(chan []byte, h.cfg.SendBuffer),
	}

	if err := h.register(c); err != nil {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second),
		)
		conn.Close()
		return
	}

	h.logger.Debug("stream client connected", "remote", r.RemoteAddr)

	go h.writePump(c)
	go h.readPump(c)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.metrics.SetStreamClients(0)
}

// register adds c and queues its snapshot under the hub lock, so no
// broadcast can fall between the two. A batch may appear in both.
func (h *Hub) register(c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	if h.snapshot != nil {
		data, err := encode(TypeSnapshot, h.snapshot(), c.host)
		if err != nil {
			return err
		}
		c.send <- data
	}
	h.clients[c] = struct{}{}
	h.metrics.SetStreamClients(len(h.clients))
	return nil
}

// remove unregisters c and closes its send channel, once.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) bool {
	if _, ok := h.clients[c]; !ok {
		return false
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.SetStreamClients(len(h.clients))
	return true
}

func (h *Hub) broadcast(batch []model.Token) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	// One encoding per distinct host.
	frames := make(map[string][]byte, 1)
	for c := range h.clients {
		data, ok := frames[c.host]
		if !ok {
			var err error
			if data, err = encode(TypeTokens, batch, c.host); err != nil {
				return err
			}
			frames[c.host] = data
		}
		select {
		case c.send <- data:
		default:
			// Slow consumer; the write pump closes the socket.
			h.removeLocked(c)
			h.metrics.RecordStreamDrop()
			h.logger.Warn("stream client too slow, dropping")
		}
	}
	return nil
}

// encode builds a frame with image URLs relayed through host.
func encode(typ string, tokens []model.Token, host string) ([]byte, error) {
	relayed := make([]model.Token, len(tokens))
	for i, t := range tokens {
		relayed[i] = t.WithImageURL(imageproxy.RewriteURL(host, t.ImageURL))
	}
	return json.Marshal(Message{Type: typ, Tokens: relayed})
}

// readPump discards inbound frames and detects disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(2 * h.cfg.PingInterval))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * h.cfg.PingInterval))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				c.conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second),
				)
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("stream write failed", "err", err)
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(h.cfg.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				h.logger.Debug("failed to send ping", "err", err)
				return
			}
		}
	}
}
