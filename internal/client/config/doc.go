// Package config loads runtime configuration for the miniwallet client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the wallet backend API
//	-d string   SQLite DSN of the local client database
//	-m string   confidential token mint address
//	-n string   network label shown on the review screen
//	-i int      backend health check interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "base_url": "https://wallet.example.com/api",
//	  "database_dsn": "miniwallet.db",
//	  "mint": "4Nd1mYvR6kV6hG8pZkY3n2w5JdXkPq9bTzC7f1sQ2aBc",
//	  "token_decimals": 9,
//	  "network": "devnet",
//	  "request_timeout": "15s",
//	  "health_check_interval": "3s"
//	}
//
// Primary API
//
//   - type Config                     — runtime settings for the client
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; the
// platform assertion is the only value sourced from the environment, and it
// belongs to the platform package, not here.
package config
