package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from the process environment, after
// first loading an optional .env file from the working directory. A missing
// .env file is not an error; explicitly exported variables win over .env
// values (godotenv never overwrites existing variables).
//
// Recognized variables:
//
//	MUSTER_SERVER_URL       base URL of the backend
//	MUSTER_DB_PATH          local SQLite database path
//	MUSTER_ONLINE_INTERVAL  reachability probe interval (Go duration syntax)
//	MUSTER_LOG_BACKEND      slog | zap
//	MUSTER_LOG_LEVEL        debug | info | warn | error
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("MUSTER_SERVER_URL"); v != "" {
		cfg.ServerEndpointURL = v
	}
	if v := os.Getenv("MUSTER_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("MUSTER_ONLINE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.OnlineCheckInterval = d
		}
	}
	if v := os.Getenv("MUSTER_LOG_BACKEND"); v != "" {
		cfg.LogBackend = v
	}
	if v := os.Getenv("MUSTER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
