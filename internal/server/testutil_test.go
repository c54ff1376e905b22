// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tidemark-dev/tidemark/internal/graph"
	"github.com/tidemark-dev/tidemark/internal/graph/memgraph"
	"github.com/tidemark-dev/tidemark/internal/lineage"
	"github.com/tidemark-dev/tidemark/internal/server"
	"github.com/tidemark-dev/tidemark/internal/store/sqlite"
	"github.com/tidemark-dev/tidemark/pkg/health"
)

type staticHealth struct {
	m health.Metrics
}

func (s staticHealth) Health() health.Metrics { return s.m }

// newStackServer serves a real lineage service over sqlite and the
// in-memory graph store.
func newStackServer(t *testing.T) *server.Server {
	t.Helper()
	ms, err := sqlite.NewMetadataStore(filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ms.Close() })

	gw := graph.NewGateway(memgraph.New(), graph.Config{})
	svc := lineage.NewService(ms, gw)

	services, err := server.NewServices(svc, svc, gw, nil)
	require.NoError(t, err)
	return newServerWith(t, services)
}

func newServerWith(t *testing.T, services *server.Services) *server.Server {
	t.Helper()
	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	srv.RegisterServices(services)
	return srv
}

func doJSON(t *testing.T, srv *server.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequestWithContext(context.Background(), method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}


// stripSchema drops the $schema link huma adds to response bodies.
func stripSchema(t *testing.T, body []byte) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m))
	delete(m, "$schema")
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return string(out)
}
