// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package cayley

import (
	"context"
	"log/slog"

	"github.com/tidemark-dev/tidemark/internal/graph"
)

// Query compiles p to Gizmo, runs it, and decodes the result strictly.
func (s *Store) Query(ctx context.Context, p graph.Program) ([]graph.EdgeRecord, error) {
	script, err := s.compiler.Compile(p)
	if err != nil {
		return nil, err
	}

	slog.Debug("running subgraph query", slog.String("start", string(p.Start)), slog.Int("bytes", len(script)))

	body, err := s.post(ctx, queryPath+s.engine, "text/plain", []byte(script))
	if err != nil {
		return nil, err
	}
	return graph.DecodeQueryResult(body)
}
