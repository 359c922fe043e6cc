// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultSaveFilePath returns the default path of the ranking save file.
func DefaultSaveFilePath() string {
	return filepath.Join(XDGDataHome(), "runrank", "ranking.toml")
}

// DefaultDBPath returns the default path for the SQLite usage log.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), "runrank", "runrank.db")
}

// DefaultCommandsPath returns the default user command list.
func DefaultCommandsPath() string {
	return filepath.Join(XDGConfigHome(), "runrank", "commands.txt")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "runrank", "config.toml")
}
