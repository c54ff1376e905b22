// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

//go:build !windows

package config

import (
	"io/fs"
	"log/slog"
	"os"
)

// WarnInsecurePermissions logs a warning when the config file is group- or
// world-readable. graph.url may carry credentials. Startup is not failed.
func WarnInsecurePermissions(path string) {
	if path == "" {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		slog.Debug("could not stat config file for permission check", "path", path, "error", err)
		return
	}

	mode := info.Mode()
	perm := mode.Perm()

	const groupRead fs.FileMode = 0o040
	const otherRead fs.FileMode = 0o004

	if perm&(groupRead|otherRead) != 0 {
		slog.Warn(
			"config file has insecure permissions; graph credentials may be exposed to other users",
			"path", path,
			"mode", mode,
			"recommended", "0600",
		)
	}
}
