package config

import "time"

// Config is the root configuration for the backend.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Poller     PollerConfig     `yaml:"poller"`
	Tracker    TrackerConfig    `yaml:"tracker"`
	Feed       FeedConfig       `yaml:"feed"`
	SolPrice   SolPriceConfig   `yaml:"sol_price"`
	ImageProxy ImageProxyConfig `yaml:"image_proxy"`
	Stream     StreamConfig     `yaml:"stream"`
	News       NewsConfig       `yaml:"news"`
	Database   DBConfig         `yaml:"database"`
	Writer     WriterConfig     `yaml:"writer"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int           `yaml:"port"`
	PublicHost     string        `yaml:"public_host"` // Host used in rewritten image URLs; request Host if empty
	AllowedOrigins []string      `yaml:"allowed_origins"`
	Debug          bool          `yaml:"debug"` // Mounts tracker reset
	ShutdownGrace  time.Duration `yaml:"shutdown_grace"`
}

// UpstreamConfig holds pump.fun API settings.
type UpstreamConfig struct {
	CoinsURL   string        `yaml:"coins_url"`
	PriceURL   string        `yaml:"price_url"`
	UserAgent  string        `yaml:"user_agent"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// PollerConfig holds feed poller settings.
type PollerConfig struct {
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
	Preset   string        `yaml:"preset"` // scan, byMarketCap, graduated
	Limit    int           `yaml:"limit"`
}

// TrackerConfig holds freshness tracker settings.
type TrackerConfig struct {
	MaxSeen int `yaml:"max_seen"`
}

// FeedConfig holds live feed settings.
type FeedConfig struct {
	MaxTokens int `yaml:"max_tokens"`
}

// SolPriceConfig holds SOL price cache settings.
type SolPriceConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// ImageProxyConfig holds image relay settings.
type ImageProxyConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	IPFSGateway string        `yaml:"ipfs_gateway"`
}

// StreamConfig holds WebSocket stream settings.
type StreamConfig struct {
	Enabled      bool          `yaml:"enabled"`
	PingInterval time.Duration `yaml:"ping_interval"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	SendBuffer   int           `yaml:"send_buffer"`
}

// NewsConfig holds Solana news cache settings.
type NewsConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Endpoint   string        `yaml:"endpoint"`
	Model      string        `yaml:"model"`
	APIKey     string        `yaml:"api_key"`
	RefreshKey string        `yaml:"refresh_key"`
	CacheFile  string        `yaml:"cache_file"`
	Timeout    time.Duration `yaml:"timeout"`
}

// DBConfig holds the Supabase/Postgres connection used to mirror admitted tokens.
type DBConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"` // Full connection URL; overrides the fields below
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// WriterConfig holds token writer batching settings.
type WriterConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}
