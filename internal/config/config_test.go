package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.HandshakeTimeout)
	assert.Equal(t, 5*time.Second, cfg.ReloadGracePeriod)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "public", cfg.PublicDir)
	assert.Equal(t, int64(256), cfg.MaxConnections)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("HANDSHAKE_TIMEOUT", "1s")
	t.Setenv("RELOAD_GRACE_PERIOD", "10s")
	t.Setenv("MAX_CONNECTIONS", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, time.Second, cfg.HandshakeTimeout)
	assert.Equal(t, 10*time.Second, cfg.ReloadGracePeriod)
	assert.Equal(t, int64(4), cfg.MaxConnections)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero handshake timeout", "HANDSHAKE_TIMEOUT", "0s"},
		{"negative grace period", "RELOAD_GRACE_PERIOD", "-5s"},
		{"zero max connections", "MAX_CONNECTIONS", "0"},
		{"zero per-ip limit", "MAX_CONNECTIONS_PER_IP", "0"},
		{"zero upgrade rate", "UPGRADES_PER_SECOND", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
