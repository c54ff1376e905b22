// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package store

import (
	"sync"

	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// MetadataStoreFactory opens a metadata store at path.
type MetadataStoreFactory func(path string) (MetadataStore, error)

var (
	factories   = map[string]MetadataStoreFactory{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers the factory for a named storage backend.
// Backend packages call this from init(). This function is goroutine-safe.
func RegisterBackend(name string, factory MetadataStoreFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = factory
}

// resolveBackend returns the effective backend name, defaulting to "sqlite".
func resolveBackend(cfg *StorageConfig) string {
	if cfg.Backend == "" {
		return "sqlite"
	}
	return cfg.Backend
}

// NewMetadataStore opens the configured metadata store.
func NewMetadataStore(cfg *StorageConfig) (MetadataStore, error) {
	backend := resolveBackend(cfg)

	factoriesMu.RLock()
	factory, ok := factories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, tmerr.New(tmerr.CodeStoreBackendUnsupported, "unsupported storage backend", tmerr.FieldBackend(backend))
	}
	if cfg.Path == "" {
		return nil, tmerr.New(tmerr.CodeStoreInvalidInput, "storage path is required", tmerr.FieldBackend(backend))
	}

	return factory(cfg.Path)
}
