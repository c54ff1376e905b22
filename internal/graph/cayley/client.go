// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

// Package cayley is the graph.Store backend for a remote Cayley server.
//
// Triples are submitted to /api/v1/write and traversals are compiled to
// Gizmo and posted to /api/v1/query/gizmo. Importing this package registers
// the "cayley" backend.
package cayley

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidemark-dev/tidemark/internal/graph"
	"github.com/tidemark-dev/tidemark/internal/graph/gizmo"
	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

const (
	writePath = "/api/v1/write"
	queryPath = "/api/v1/query/"

	// DefaultPort is the Cayley HTTP port.
	DefaultPort = 64210

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 32 << 20
)

func init() {
	graph.RegisterBackend("cayley", func(cfg graph.BackendConfig) (graph.Store, error) {
		s, err := New(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

// Store talks to Cayley over HTTP. It is safe for concurrent use.
type Store struct {
	baseURL  string
	engine   string
	timeout  time.Duration
	http     *http.Client
	compiler *gizmo.Compiler
}

var _ graph.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) { s.http = c }
}

// New creates a Store from cfg. URL takes precedence over Host and Port.
func New(cfg graph.BackendConfig, opts ...Option) (*Store, error) {
	base, err := baseURL(cfg)
	if err != nil {
		return nil, err
	}
	engine := cfg.Engine
	if engine == "" {
		engine = gizmo.Engine
	}
	if engine != gizmo.Engine {
		return nil, tmerr.New(tmerr.CodeGraphConfigInvalid, "unsupported query engine", tmerr.Field("engine", engine))
	}
	if cfg.Timeout < 0 {
		return nil, tmerr.Errorf(tmerr.CodeGraphConfigInvalid, "timeout must not be negative, got %s", cfg.Timeout)
	}

	s := &Store{
		baseURL:  base,
		engine:   engine,
		timeout:  cfg.Timeout,
		http:     &http.Client{},
		compiler: gizmo.NewCompiler(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func baseURL(cfg graph.BackendConfig) (string, error) {
	if cfg.URL != "" {
		u := strings.TrimRight(cfg.URL, "/")
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return "", tmerr.New(tmerr.CodeGraphConfigInvalid, "graph url must use http or https", tmerr.Field("url", cfg.URL))
		}
		return u, nil
	}
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	if port < 1 || port > 65535 {
		return "", tmerr.Errorf(tmerr.CodeGraphConfigInvalid, "graph port out of range: %d", port)
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port)), nil
}

// BaseURL returns the server root the store talks to.
func (s *Store) BaseURL() string { return s.baseURL }

// Close is a no-op; the HTTP client holds no per-store resources.
func (s *Store) Close() error { return nil }

// post sends body to path and returns the response body. A non-2xx status
// is a transport failure.
func (s *Store) post(ctx context.Context, path, contentType string, body []byte) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, tmerr.Wrap(err, tmerr.CodeGraphTransportFailure, "build request", tmerr.Field("path", path))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, graph.TransportError(err, "graph store request failed", tmerr.Field("path", path))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, graph.TransportError(err, "read graph store response", tmerr.Field("path", path))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Debug("graph store returned error status",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return nil, tmerr.New(tmerr.CodeGraphTransportFailure,
			fmt.Sprintf("graph store returned status %d", resp.StatusCode),
			tmerr.Field("path", path),
			tmerr.Field("status", resp.StatusCode),
			tmerr.Field("body", truncate(string(data), 512)),
		)
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
