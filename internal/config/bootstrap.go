// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package config

import (
	_ "embed"
	"log/slog"
	"os"
	"path/filepath"

	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

//go:embed tidemark.yaml.default
var DefaultConfigYAML []byte

// DefaultConfigPath returns ~/.config/tidemark/tidemark.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", tmerr.Errorf(tmerr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "tidemark", "tidemark.yaml"), nil
}

// BootstrapConfig writes the default commented config to path unless a file
// is already there. Returns the path written, or empty string if the file
// already existed or could not be written (logged and skipped).
func BootstrapConfig(path string) string {
	if _, err := os.Stat(path); err == nil {
		return ""
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		slog.Debug("skipping config bootstrap: cannot create directory", "path", dir, "error", err)
		return ""
	}

	if err := os.WriteFile(path, DefaultConfigYAML, 0o600); err != nil {
		slog.Debug("skipping config bootstrap: cannot write config", "path", path, "error", err)
		return ""
	}

	slog.Info("created default config", "path", path)
	return path
}
