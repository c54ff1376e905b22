// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

// Package memgraph is an in-process graph.Store. It evaluates traversal
// programs with the same semantics the Gizmo scripts have on Cayley and is
// used for local runs and tests. Importing it registers the "memory"
// backend.
package memgraph

import (
	"context"
	"sync"

	"github.com/tidemark-dev/tidemark/internal/graph"
	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

func init() {
	graph.RegisterBackend("memory", func(graph.BackendConfig) (graph.Store, error) {
		return New(), nil
	})
}

// WriteHook runs before each WriteTriples call is applied. call counts
// from 1. A non-nil error fails the call without writing anything.
type WriteHook func(call int, triples []graph.Triple) error

// Store holds an ordered set of triples.
type Store struct {
	mu      sync.RWMutex
	triples []graph.Triple
	index   map[graph.Triple]struct{}
	calls   int
	hook    WriteHook
}

var _ graph.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithWriteHook installs a hook for fault injection.
func WithWriteHook(h WriteHook) Option {
	return func(s *Store) { s.hook = h }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{index: make(map[graph.Triple]struct{})}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WriteTriples adds triples, ignoring ones already present.
func (s *Store) WriteTriples(ctx context.Context, triples []graph.Triple) error {
	if err := ctx.Err(); err != nil {
		return graph.TransportError(err, "write triples")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.hook != nil {
		if err := s.hook(s.calls, triples); err != nil {
			return err
		}
	}
	for _, t := range triples {
		if _, ok := s.index[t]; ok {
			continue
		}
		s.index[t] = struct{}{}
		s.triples = append(s.triples, t)
	}
	return nil
}

// Triples returns a copy of the stored triples in insertion order.
func (s *Store) Triples() []graph.Triple {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]graph.Triple, len(s.triples))
	copy(out, s.triples)
	return out
}

// WriteCalls returns how many WriteTriples calls reached the store.
func (s *Store) WriteCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// Query evaluates p. Records of each sub-query are concatenated in order;
// within a sub-query edges follow insertion order.
func (s *Store) Query(ctx context.Context, p graph.Program) ([]graph.EdgeRecord, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, graph.TransportError(err, "query")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	start := string(p.Start)
	records := []graph.EdgeRecord{}
	for _, sq := range p.SubQueries {
		var err error
		switch q := graph.Normalize(sq).(type) {
		case graph.Neighbors:
			records, err = s.emitFrom(records, start, q.Direction)
		case graph.Transitive:
			for _, v := range s.reach(start, q.Direction, q.MaxDepth) {
				if records, err = s.emitFrom(records, v, q.Direction); err != nil {
					break
				}
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

// emitFrom appends a record for every "to" edge on the dir side of node.
func (s *Store) emitFrom(records []graph.EdgeRecord, node string, dir graph.Direction) ([]graph.EdgeRecord, error) {
	for _, t := range s.triples {
		if t.Predicate != graph.PredicateTo {
			continue
		}
		var subject, object string
		switch {
		case dir == graph.Out && t.Subject == node:
			subject, object = node, t.Object
		case dir == graph.In && t.Object == node:
			subject, object = t.Subject, node
		default:
			continue
		}
		rec, err := s.record(subject, object)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// reach returns start followed by the distinct nodes 1..depth-1 hops from
// it in dir, in breadth-first order.
func (s *Store) reach(start string, dir graph.Direction, depth int) []string {
	seen := map[string]bool{start: true}
	out := []string{start}
	frontier := []string{start}
	for hop := 1; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, n := range frontier {
			for _, m := range s.neighbors(n, dir) {
				if seen[m] {
					continue
				}
				seen[m] = true
				out = append(out, m)
				next = append(next, m)
			}
		}
		frontier = next
	}
	return out
}

func (s *Store) neighbors(node string, dir graph.Direction) []string {
	var out []string
	for _, t := range s.triples {
		if t.Predicate != graph.PredicateTo {
			continue
		}
		if dir == graph.Out && t.Subject == node {
			out = append(out, t.Object)
		}
		if dir == graph.In && t.Object == node {
			out = append(out, t.Subject)
		}
	}
	return out
}

func (s *Store) record(subject, object string) (graph.EdgeRecord, error) {
	var rec graph.EdgeRecord
	var err error
	if rec.Subject, err = s.attr(subject, graph.PredicateName); err != nil {
		return rec, err
	}
	if rec.SubjectType, err = s.attr(subject, graph.PredicateType); err != nil {
		return rec, err
	}
	if rec.SubjectNamespace, err = s.attr(subject, graph.PredicateNamespace); err != nil {
		return rec, err
	}
	rec.Predicate = graph.PredicateTo
	if rec.Object, err = s.attr(object, graph.PredicateName); err != nil {
		return rec, err
	}
	if rec.ObjectType, err = s.attr(object, graph.PredicateType); err != nil {
		return rec, err
	}
	if rec.ObjectNamespace, err = s.attr(object, graph.PredicateNamespace); err != nil {
		return rec, err
	}
	return rec, nil
}

// attr returns the first object of (node, predicate, *).
func (s *Store) attr(node, predicate string) (string, error) {
	for _, t := range s.triples {
		if t.Subject == node && t.Predicate == predicate {
			return t.Object, nil
		}
	}
	return "", tmerr.New(tmerr.CodeGraphDecodeFailure, "edge endpoint is missing an attribute",
		tmerr.FieldNode(node), tmerr.Field("predicate", predicate))
}
