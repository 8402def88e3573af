// Package daemon manages the ResetDopa engine lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all engine configuration.
type Config struct {
	User          UserConfig          `toml:"user"`
	API           APIConfig           `toml:"api"`
	Storage       StorageConfig       `toml:"storage"`
	Notifications NotificationsConfig `toml:"notifications"`
	Telemetry     TelemetryConfig     `toml:"telemetry"`
	Logging       LoggingConfig       `toml:"logging"`
}

// UserConfig identifies the local user record.
type UserConfig struct {
	ID string `toml:"id"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StorageConfig controls the local state store.
type StorageConfig struct {
	Dir              string `toml:"dir"`
	CoalesceWindowMS int    `toml:"coalesce_window_ms"`
}

// NotificationsConfig controls local notification delivery.
type NotificationsConfig struct {
	Enabled    bool   `toml:"enabled"`
	QuietStart string `toml:"quiet_start"`
	QuietEnd   string `toml:"quiet_end"`
	MaxPerDay  int    `toml:"max_per_day"`
}

// TelemetryConfig controls observability endpoints.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level     string `toml:"level"`
	File      string `toml:"file"`
	MaxSizeMB int    `toml:"max_size_mb"`
	MaxFiles  int    `toml:"max_files"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := resetdopaHome()
	return Config{
		User: UserConfig{
			ID: "local",
		},
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        27310,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Dir:              filepath.Join(homeDir, "data"),
			CoalesceWindowMS: 50,
		},
		Notifications: NotificationsConfig{
			Enabled:    true,
			QuietStart: "22:00",
			QuietEnd:   "08:00",
			MaxPerDay:  3,
		},
		Logging: LoggingConfig{
			Level:     "info",
			File:      filepath.Join(homeDir, "resetdopa.log"),
			MaxSizeMB: 50,
			MaxFiles:  5,
		},
	}
}

// LoadConfig reads config from ~/.resetdopa/config.toml, falling back to
// defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(resetdopaHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet, use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.resetdopa/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(resetdopaHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// resetdopaHome returns the engine data directory.
func resetdopaHome() string {
	if env := os.Getenv("RESETDOPA_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".resetdopa")
}

// Home is exported for use by other packages.
func Home() string {
	return resetdopaHome()
}
