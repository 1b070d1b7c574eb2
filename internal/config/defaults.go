package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPort              = 3000
	DefaultShutdownGrace     = 10 * time.Second
	DefaultCoinsURL          = "https://advanced-api-v2.pump.fun"
	DefaultPriceURL          = "https://frontend-api-v3.pump.fun"
	DefaultUpstreamTimeout   = 15 * time.Second
	DefaultMaxRetries        = 2
	DefaultPollInterval      = 5 * time.Second
	DefaultPollTimeout       = 10 * time.Second
	DefaultPollPreset        = "scan"
	DefaultPollLimit         = 100
	DefaultTrackerMaxSeen    = 1000
	DefaultFeedMaxTokens     = 200
	DefaultSolPriceTTL       = 5 * time.Second
	DefaultImageProxyTimeout = 15 * time.Second
	DefaultIPFSGateway       = "https://ipfs.io/ipfs/"
	DefaultPingInterval      = 30 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultSendBuffer        = 16
	DefaultNewsEndpoint      = "https://api.gemini.com/v1/ai/chat/completions"
	DefaultNewsModel         = "gemini-2.5-flash"
	DefaultNewsCacheFile     = "solana-news.json"
	DefaultNewsTimeout       = 60 * time.Second
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "require"
	DefaultMaxConns          = 5
	DefaultMinConns          = 1
	DefaultBatchSize         = 100
	DefaultFlushInterval     = 2 * time.Second
	DefaultMetricsPath       = "/metrics"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
)

// DefaultAllowedOrigins are the frontend origins echoed back by CORS.
var DefaultAllowedOrigins = []string{
	"https://www.solanawatchx.site",
	"https://solanawatchx.site",
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

// ApplyDefaults fills zero-valued optional fields.
func (c *Config) ApplyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.AllowedOrigins == nil {
		c.Server.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}
	if c.Server.ShutdownGrace == 0 {
		c.Server.ShutdownGrace = DefaultShutdownGrace
	}

	// Upstream defaults
	if c.Upstream.CoinsURL == "" {
		c.Upstream.CoinsURL = DefaultCoinsURL
	}
	if c.Upstream.PriceURL == "" {
		c.Upstream.PriceURL = DefaultPriceURL
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = DefaultUpstreamTimeout
	}
	if c.Upstream.MaxRetries == 0 {
		c.Upstream.MaxRetries = DefaultMaxRetries
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.Timeout == 0 {
		c.Poller.Timeout = DefaultPollTimeout
	}
	if c.Poller.Preset == "" {
		c.Poller.Preset = DefaultPollPreset
	}
	if c.Poller.Limit == 0 {
		c.Poller.Limit = DefaultPollLimit
	}

	if c.Tracker.MaxSeen == 0 {
		c.Tracker.MaxSeen = DefaultTrackerMaxSeen
	}
	if c.Feed.MaxTokens == 0 {
		c.Feed.MaxTokens = DefaultFeedMaxTokens
	}
	if c.SolPrice.TTL == 0 {
		c.SolPrice.TTL = DefaultSolPriceTTL
	}

	if c.ImageProxy.Timeout == 0 {
		c.ImageProxy.Timeout = DefaultImageProxyTimeout
	}
	if c.ImageProxy.IPFSGateway == "" {
		c.ImageProxy.IPFSGateway = DefaultIPFSGateway
	}

	// Stream defaults
	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = DefaultPingInterval
	}
	if c.Stream.WriteTimeout == 0 {
		c.Stream.WriteTimeout = DefaultWriteTimeout
	}
	if c.Stream.SendBuffer == 0 {
		c.Stream.SendBuffer = DefaultSendBuffer
	}

	// News defaults
	if c.News.Endpoint == "" {
		c.News.Endpoint = DefaultNewsEndpoint
	}
	if c.News.Model == "" {
		c.News.Model = DefaultNewsModel
	}
	if c.News.CacheFile == "" {
		c.News.CacheFile = DefaultNewsCacheFile
	}
	if c.News.Timeout == 0 {
		c.News.Timeout = DefaultNewsTimeout
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Writer defaults
	if c.Writer.BatchSize == 0 {
		c.Writer.BatchSize = DefaultBatchSize
	}
	if c.Writer.FlushInterval == 0 {
		c.Writer.FlushInterval = DefaultFlushInterval
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
