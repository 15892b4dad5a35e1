// Package daemon holds the server configuration: defaults, the TOML config
// file, and environment overrides, applied in that order.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full server configuration, normally read from
// ~/.recurrency/config.toml.
type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
}

// APIConfig controls the HTTP listener.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

// StorageConfig controls where the state database lives.
type StorageConfig struct {
	// Path to the SQLite state file. Overridden by RECURRENCY_DB.
	Path string `toml:"path"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:    "0.0.0.0",
			Port:    18080,
			Metrics: true,
		},
		Storage: StorageConfig{
			Path: defaultStatePath(),
		},
	}
}

// Load reads the config file at path (missing file is fine — defaults
// apply) and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if db := os.Getenv("RECURRENCY_DB"); db != "" {
		cfg.Storage.Path = db
	}
	return cfg, nil
}

// DefaultConfigPath returns ~/.recurrency/config.toml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".recurrency", "config.toml")
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "recurrency.db"
	}
	return filepath.Join(home, ".recurrency", "state.db")
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}
