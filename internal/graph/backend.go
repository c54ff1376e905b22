// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package graph

import (
	"context"
	"sort"
	"sync"
	"time"

	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// Store is a graph store backend.
type Store interface {
	// WriteTriples submits triples in one request. Re-inserting an
	// existing triple must be a no-op.
	WriteTriples(ctx context.Context, triples []Triple) error
	// Query runs a traversal program and returns the flattened records of
	// every sub-query, concatenated in program order.
	Query(ctx context.Context, p Program) ([]EdgeRecord, error)
	Close() error
}

// BackendConfig selects and configures a graph store backend.
type BackendConfig struct {
	Backend string // "cayley" or "memory"
	// URL overrides Host and Port, e.g. "http://cayley:64210".
	URL     string
	Host    string
	Port    int
	Engine  string        // query language endpoint; "gizmo" when empty
	Timeout time.Duration // per-request deadline; zero disables it
}

// BackendFactory opens a backend from its configuration.
type BackendFactory func(cfg BackendConfig) (Store, error)

var (
	backends   = map[string]BackendFactory{}
	backendsMu sync.RWMutex
)

// RegisterBackend registers a factory under name. Backend packages call
// this from init(). This function is goroutine-safe.
func RegisterBackend(name string, factory BackendFactory) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[name] = factory
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewStore opens the configured backend, defaulting to "cayley".
func NewStore(cfg BackendConfig) (Store, error) {
	name := cfg.Backend
	if name == "" {
		name = "cayley"
	}

	backendsMu.RLock()
	factory, ok := backends[name]
	backendsMu.RUnlock()
	if !ok {
		return nil, tmerr.New(tmerr.CodeGraphBackendUnsupported, "unsupported graph backend", tmerr.FieldBackend(name))
	}

	s, err := factory(cfg)
	if err != nil {
		return nil, tmerr.With(err, tmerr.FieldBackend(name))
	}
	return s, nil
}
