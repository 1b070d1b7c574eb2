package database

import (
	"fmt"
	"net/url"

	"github.com/solanawatchx/watchx-backend/internal/config"
)

// BuildConnString builds a PostgreSQL connection string from config.
// A configured URL is returned as-is.
func BuildConnString(cfg config.DBConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}

	// URL-encode credentials to handle special characters
	user := url.QueryEscape(cfg.User)
	escapedPassword := url.QueryEscape(cfg.Password)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		user,
		escapedPassword,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}
