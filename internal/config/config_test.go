package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.RedisHost)
	assert.Equal(t, uint16(6379), cfg.RedisPort)
	assert.Equal(t, 1.0, cfg.BidMinIncrement)
	assert.Equal(t, 10, cfg.BidRateLimit)
	assert.Equal(t, 60*time.Second, cfg.BidRateWindow)
	assert.Equal(t, 30*time.Second, cfg.BidRateCacheTTL)
	assert.Equal(t, 5, cfg.LoginRateLimit)
	assert.Equal(t, 15*time.Minute, cfg.LoginRateWindow)
	assert.Equal(t, 60*time.Second, cfg.LoginRateCacheTTL)
	assert.Equal(t, 30*time.Second, cfg.WinnerSweepInterval)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, uint16(8085), cfg.HttpServerPort)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("BID_RATE_LIMIT", "3")
	t.Setenv("BID_RATE_WINDOW", "10s")
	t.Setenv("BID_MIN_INCREMENT", "0.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.BidRateLimit)
	assert.Equal(t, 10*time.Second, cfg.BidRateWindow)
	assert.Equal(t, 0.5, cfg.BidMinIncrement)
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	t.Setenv("HTTP_SERVER_PORT", "80")

	_, err := LoadConfig()
	require.Error(t, err)
}
