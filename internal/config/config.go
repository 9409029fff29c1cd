package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// DataDir holds the writable game-state snapshot (current_game.json).
	DataDir string `env:"DATA_DIR" default:"data"`
	// ConfigDir holds the writable init_data.json generated by the operator.
	ConfigDir string `env:"CONFIG_DIR" default:"config"`
	// BundledConfigDir holds the read-only init_data.json shipped with the app.
	BundledConfigDir string `env:"BUNDLED_CONFIG_DIR" default:"config"`
	// PublicDir is the static asset root served over HTTP.
	PublicDir string `env:"PUBLIC_DIR" default:"public"`

	// HandshakeTimeout bounds how long a connection may stay unclassified
	// before it is treated as a display-only viewer.
	HandshakeTimeout time.Duration `env:"HANDSHAKE_TIMEOUT" default:"3s"`
	// ReloadGracePeriod is how long a disconnected master's token stays
	// valid for reconnection before a standby is promoted.
	ReloadGracePeriod time.Duration `env:"RELOAD_GRACE_PERIOD" default:"5s"`

	MaxConnections      int64   `env:"MAX_CONNECTIONS" default:"256"`
	MaxConnectionsPerIP int     `env:"MAX_CONNECTIONS_PER_IP" default:"32"`
	UpgradesPerSecond   float64 `env:"UPGRADES_PER_SECOND" default:"10"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.HandshakeTimeout <= 0 {
		return fmt.Errorf("HANDSHAKE_TIMEOUT must be positive, got %v", cfg.HandshakeTimeout)
	}
	if cfg.ReloadGracePeriod <= 0 {
		return fmt.Errorf("RELOAD_GRACE_PERIOD must be positive, got %v", cfg.ReloadGracePeriod)
	}
	if cfg.MaxConnections < 1 {
		return fmt.Errorf("MAX_CONNECTIONS must be at least 1, got %d", cfg.MaxConnections)
	}
	if cfg.MaxConnectionsPerIP < 1 {
		return fmt.Errorf("MAX_CONNECTIONS_PER_IP must be at least 1, got %d", cfg.MaxConnectionsPerIP)
	}
	if cfg.UpgradesPerSecond <= 0 {
		return fmt.Errorf("UPGRADES_PER_SECOND must be positive, got %v", cfg.UpgradesPerSecond)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if cfg.PublicDir == "" {
		return fmt.Errorf("PUBLIC_DIR is required")
	}
	return nil
}
