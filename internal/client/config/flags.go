package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/miniwallet/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the wallet backend API (default from Config)
//	-d string   SQLite DSN of the local database (default from Config)
//	-m string   confidential token mint address
//	-n string   network label
//	-i int      health check interval in seconds (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-m", "-n", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "base URL of the wallet backend API")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "SQLite DSN of the local database")
	fs.StringVar(&cfg.Mint, "m", cfg.Mint, "confidential token mint address")
	fs.StringVar(&cfg.Network, "n", cfg.Network, "network label")
	healthCheckInterval := fs.Int("i", int(cfg.HealthCheckInterval.Seconds()), "health check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.HealthCheckInterval = time.Duration(*healthCheckInterval) * time.Second
}
