// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package cayley

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tidemark-dev/tidemark/internal/graph"
	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// WriteTriples posts triples as one JSON array. Cayley ignores a triple it
// already holds, so repeating a write is safe.
func (s *Store) WriteTriples(ctx context.Context, triples []graph.Triple) error {
	if len(triples) == 0 {
		return nil
	}
	body, err := json.Marshal(triples)
	if err != nil {
		return tmerr.Wrap(err, tmerr.CodeGraphLinkInvalid, "encode triples")
	}

	slog.Debug("writing triples", slog.Int("count", len(triples)), slog.String("subject", triples[0].Subject))

	_, err = s.post(ctx, writePath, "application/json", body)
	return err
}
