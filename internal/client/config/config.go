package config

import "time"

// Config holds runtime settings for the miniwallet client.
//
// Fields:
//   - BaseURL: root of the wallet backend API (including any path prefix).
//   - DatabaseDSN: SQLite DSN of the local client database.
//   - Mint: address of the confidential token mint the client operates on.
//   - TokenDecimals: base-unit scale factor of the mint (10^TokenDecimals).
//   - Network: label of the chain the backend targets, shown on review.
//   - RequestTimeout: per-request HTTP timeout.
//   - HealthCheckInterval: how often the client probes backend reachability.
type Config struct {
	BaseURL             string
	DatabaseDSN         string
	Mint                string
	TokenDecimals       uint8
	Network             string
	RequestTimeout      time.Duration
	HealthCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8080/api"
	c.DatabaseDSN = "miniwallet.db"
	c.TokenDecimals = 9
	c.Network = "devnet"
	c.RequestTimeout = 15 * time.Second
	c.HealthCheckInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
