package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays cfg with environment variables. Recognized:
//
//	DATABASE_DSN           PostgreSQL DSN of the remote store
//	CACHE_PATH             path of the local cache database
//	ONLINE_CHECK_INTERVAL  probe interval in seconds
//	LOG_LEVEL              minimum log level (debug, info, warn, error)
func parseEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}
	if v := os.Getenv("ONLINE_CHECK_INTERVAL"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.OnlineCheckInterval = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
