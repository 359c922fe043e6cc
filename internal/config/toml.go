// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Ranking RankingConfig `toml:"ranking"`
	Refresh RefreshConfig `toml:"refresh"`
	Storage StorageConfig `toml:"storage"`
	Sources SourcesConfig `toml:"sources"`
}

// RankingConfig maps ranking settings.
type RankingConfig struct {
	HistorySize *int `toml:"history-size"`
}

// RefreshConfig maps idle refresh settings.
type RefreshConfig struct {
	Auto     *bool     `toml:"auto"`
	Interval *Duration `toml:"interval"`
}

// StorageConfig maps file locations.
type StorageConfig struct {
	SaveFile *string `toml:"save-file"`
	DB       *string `toml:"db"`
}

// SourcesConfig maps command enumeration settings.
type SourcesConfig struct {
	Path  *bool    `toml:"path"`
	Files []string `toml:"files"`
	Scope []string `toml:"scope"`
}

// Duration is a time.Duration written as a Go duration string ("45s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
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
	return cfg, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
