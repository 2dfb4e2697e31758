package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080/api", c.BaseURL)
	assert.Equal(t, "miniwallet.db", c.DatabaseDSN)
	assert.Equal(t, uint8(9), c.TokenDecimals)
	assert.Equal(t, "devnet", c.Network)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, 3*time.Second, c.HealthCheckInterval)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://127.0.0.1:8080/api", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.HealthCheckInterval)
}
