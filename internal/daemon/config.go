// Package daemon holds the TOML process configuration (API listener,
// storage path, logging) that the focusctl commands load.
package daemon

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the root TOML configuration for the focusband daemon.
type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
}

// APIConfig controls the HTTP listener.
type APIConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	MetricsEnabled bool   `toml:"metrics_enabled"`
}

// StorageConfig controls where persisted state lives on disk.
type StorageConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the configuration used when no config file is
// present or a field is left unset.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:           "127.0.0.1",
			Port:           9191,
			MetricsEnabled: false,
		},
		Storage: StorageConfig{
			Path: defaultStoragePath(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultStoragePath returns ~/.focusband/state.db, falling back to a
// relative path if the home directory cannot be resolved.
func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "focusband.db"
	}
	return home + "/.focusband/state.db"
}

// LoadConfig reads and parses a TOML config file at path, filling any
// field absent from the file with DefaultConfig's value. A missing file is
// not an error: DefaultConfig is returned as-is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("daemon: parse config %s: %w", path, err)
	}
	return cfg, nil
}
