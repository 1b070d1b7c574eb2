package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Upstream.CoinsURL == "" {
		return errors.New("upstream.coins_url is required")
	}
	if c.Upstream.PriceURL == "" {
		return errors.New("upstream.price_url is required")
	}
	if c.Upstream.MaxRetries < 0 {
		return errors.New("upstream.max_retries must be >= 0")
	}

	if c.Poller.Interval <= 0 {
		return errors.New("poller.interval must be > 0")
	}
	switch c.Poller.Preset {
	case "scan", "byMarketCap", "graduated":
	default:
		return fmt.Errorf("poller.preset must be one of scan, byMarketCap, graduated, got %q", c.Poller.Preset)
	}
	if c.Poller.Limit < 1 {
		return errors.New("poller.limit must be >= 1")
	}

	if c.Tracker.MaxSeen < 1 {
		return errors.New("tracker.max_seen must be >= 1")
	}
	if c.Feed.MaxTokens < 1 {
		return errors.New("feed.max_tokens must be >= 1")
	}

	if c.Stream.Enabled && c.Stream.SendBuffer < 1 {
		return errors.New("stream.send_buffer must be >= 1")
	}

	if c.News.Enabled {
		if c.News.APIKey == "" {
			return errors.New("news.api_key is required when news is enabled")
		}
		if c.News.RefreshKey == "" {
			return errors.New("news.refresh_key is required when news is enabled")
		}
	}

	if c.Database.Enabled {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
		if c.Writer.BatchSize < 1 {
			return errors.New("writer.batch_size must be >= 1")
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.URL == "" {
		if db.Host == "" {
			return fmt.Errorf("%s.host is required", prefix)
		}
		if db.Name == "" {
			return fmt.Errorf("%s.name is required", prefix)
		}
		if db.User == "" {
			return fmt.Errorf("%s.user is required", prefix)
		}
		if db.Password == "" {
			return fmt.Errorf("%s.password is required", prefix)
		}
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
