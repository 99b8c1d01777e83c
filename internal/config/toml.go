// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Match   MatchConfig   `toml:"match"`
	History HistoryConfig `toml:"history"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

// MatchConfig holds the defaults a new match starts from.
type MatchConfig struct {
	Target *int    `toml:"target"`
	TeamA  *string `toml:"team-a"`
	TeamB  *string `toml:"team-b"`
}

// HistoryConfig controls the history views.
type HistoryConfig struct {
	Window *int `toml:"window"` // seconds
}

// StorageConfig selects where state is kept.
type StorageConfig struct {
	Backend  *string `toml:"backend"`
	Path     *string `toml:"path"`
	RedisURL *string `toml:"redis-url"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

func (c FileConfig) validate() error {
	if c.Match.Target != nil && *c.Match.Target <= 0 {
		return fmt.Errorf("match.target must be > 0")
	}
	if c.History.Window != nil && *c.History.Window <= 0 {
		return fmt.Errorf("history.window must be > 0")
	}
	if b := c.Storage.Backend; b != nil && *b != BackendSQLite && *b != BackendRedis {
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendSQLite, BackendRedis, *b)
	}
	return nil
}
