// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package graph

import (
	"context"
	"log/slog"
	"time"

	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// WriterConfig controls how links are submitted.
type WriterConfig struct {
	// BatchWrites submits the seven link triples in one request. When false
	// each triple is its own request and a mid-link failure is reported as a
	// PartialWriteError.
	BatchWrites bool
	// MaxAttempts bounds whole-link attempts on retryable failures. Values
	// below 1 mean a single attempt.
	MaxAttempts int
	// RetryBackoff is multiplied by the attempt number between attempts.
	RetryBackoff time.Duration
}

// Writer emits triples and links to a Store.
type Writer struct {
	store    Store
	cfg      WriterConfig
	observer Observer
}

// NewWriter creates a Writer. A nil observer is allowed.
func NewWriter(store Store, cfg WriterConfig, observer Observer) *Writer {
	if observer == nil {
		observer = MultiObserver()
	}
	return &Writer{store: store, cfg: cfg, observer: observer}
}

// Write submits one triple.
func (w *Writer) Write(ctx context.Context, t Triple) error {
	if t.Subject == "" || t.Predicate == "" || t.Object == "" {
		return invalidLink("triple has an empty component")
	}
	return w.submit(ctx, []Triple{t})
}

func (w *Writer) submit(ctx context.Context, triples []Triple) error {
	err := w.store.WriteTriples(ctx, triples)
	w.observer.ObserveWrite(len(triples), err)
	slog.Debug("graph write",
		slog.String("node", triples[0].Subject),
		slog.Int("triples", len(triples)),
		slog.Bool("ok", err == nil),
	)
	return err
}

// Link writes the edge and attribute triples relating a job and a dataset.
//
// Inputs are validated before any write; precondition errors are returned
// without touching the store. Retryable failures repeat the whole link up
// to MaxAttempts times. Every triple write is idempotent in the store, so a
// repeated link converges to the same state as a single successful one.
func (w *Writer) Link(ctx context.Context, req LinkRequest) error {
	triples, err := LinkTriples(req)
	if err != nil {
		return err
	}

	attempts := max(w.cfg.MaxAttempts, 1)
	for attempt := 1; ; attempt++ {
		err = w.linkOnce(ctx, triples)
		if err == nil || attempt >= attempts || !Retryable(err) {
			break
		}
		slog.Warn("graph link failed, retrying",
			slog.Int("attempt", attempt),
			slog.String("kind", KindOf(err).String()),
			slog.String("error", err.Error()),
		)
		if sleepCtx(ctx, w.cfg.RetryBackoff*time.Duration(attempt)) != nil {
			break
		}
	}

	w.observer.ObserveLink(err)
	if err != nil {
		return tmerr.With(err,
			tmerr.FieldNode(triples[0].Subject),
			tmerr.Field("direction", string(req.Direction)),
		)
	}
	slog.Info("graph link written",
		slog.String("node", triples[0].Subject),
		slog.String("direction", string(req.Direction)),
		slog.Int("triples", len(triples)),
	)
	return nil
}

func (w *Writer) linkOnce(ctx context.Context, triples []Triple) error {
	if w.cfg.BatchWrites {
		return w.submit(ctx, triples)
	}
	for i, t := range triples {
		if err := w.submit(ctx, []Triple{t}); err != nil {
			if i == 0 {
				return err
			}
			return &PartialWriteError{Written: i, Total: len(triples), Err: err}
		}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil || d <= 0 {
		return err
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
