// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package graph

import (
	"context"
	"log/slog"
	"time"

	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// Executor validates traversal programs and runs them against a Store.
type Executor struct {
	store    Store
	observer Observer
}

// NewExecutor creates an Executor. A nil observer is allowed.
func NewExecutor(store Store, observer Observer) *Executor {
	if observer == nil {
		observer = MultiObserver()
	}
	return &Executor{store: store, observer: observer}
}

// Execute runs p and returns its records in sub-query order, duplicates
// included. kind labels the query for observers.
func (e *Executor) Execute(ctx context.Context, kind string, p Program) ([]EdgeRecord, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	records, err := e.store.Query(ctx, p)
	elapsed := time.Since(start)
	e.observer.ObserveQuery(kind, elapsed, err)
	if err != nil {
		return nil, tmerr.With(err, tmerr.FieldNode(string(p.Start)))
	}
	if records == nil {
		records = []EdgeRecord{}
	}
	slog.Info("graph query",
		slog.String("node", string(p.Start)),
		slog.String("kind", kind),
		slog.Int("records", len(records)),
		slog.Duration("elapsed", elapsed),
	)
	return records, nil
}
