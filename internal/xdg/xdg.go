// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package xdg resolves the XDG Base Directory locations used by sqlbind.
package xdg

import (
	"os"
	"path/filepath"
)

// AppName is the directory name under the XDG base directories.
const AppName = "sqlbind"

// ConfigDir returns $XDG_CONFIG_HOME/sqlbind, falling back to
// ~/.config/sqlbind when XDG_CONFIG_HOME is unset. It does not create it.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppName), nil
}

// ConfigFile returns the default config file path.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
