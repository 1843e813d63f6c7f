package config

import "time"

// Config holds runtime settings for the Muster CLI.
//
// Fields:
//   - ServerEndpointURL: base URL of the farm-management REST backend.
//   - DatabasePath: path to the local SQLite database file.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - RequestTimeout: per-request deadline applied by the gateway's transport.
//   - LogBackend: "slog" (text, development) or "zap" (JSON, production).
//   - LogLevel: debug|info|warn|error.
type Config struct {
	ServerEndpointURL   string
	DatabasePath        string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	LogBackend          string
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointURL = "http://127.0.0.1:8000"
	c.DatabasePath = "muster.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 12 * time.Second
	c.LogBackend = "slog"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (including an optional .env file), JSON (if present) and
// command-line flags (if present). Later sources take precedence over
// earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
