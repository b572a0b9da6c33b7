// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

// Package xdg provides XDG Base Directory paths for cuppa.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "cuppa"

// ConfigDir returns the XDG config directory for cuppa.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// ConfigFile returns the default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), appName+".yaml")
}

// EnsureDir creates a directory and all parent directories if they don't exist.
// Directories are created with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return oops.With("path", path).Wrapf(err, "failed to create directory")
	}
	return nil
}
