// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package graph

import (
	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// DefaultMaxDepth caps transitive traversal when no depth is configured.
// It bounds remote work and response size; it is not a domain constant.
const DefaultMaxDepth = 5

// Direction is the way a traversal follows "to" edges.
type Direction int

const (
	// Out follows edges from subject to object (successors).
	Out Direction = iota
	// In follows edges from object to subject (predecessors).
	In
)

func (d Direction) String() string {
	switch d {
	case Out:
		return "out"
	case In:
		return "in"
	default:
		return "unknown"
	}
}

// SubQuery is one part of a traversal Program.
//
// This is a sealed interface: only the types in this file implement it, so
// backends can switch over it exhaustively.
//
// SubQuery types:
//   - Neighbors: edges incident to the start node in one direction
//   - Transitive: edges incident to every node reachable within MaxDepth hops
type SubQuery interface {
	subQuery()
}

// Neighbors emits each "to" edge that has the start node as subject (Out) or
// object (In), with the attributes of both endpoints resolved.
type Neighbors struct {
	Direction Direction
}

func (Neighbors) subQuery() {}

// Transitive emits the Direction-side "to" edges of every node within
// MaxDepth-1 hops of the start node, the start node included. The result is
// every edge on a Direction path of at most MaxDepth hops.
//
// The store has no cycle detection, so the depth bound is what makes the
// traversal terminate on cyclic graphs.
type Transitive struct {
	Direction Direction
	MaxDepth  int
}

func (Transitive) subQuery() {}

// Program is a traversal rooted at one node. Records produced by each
// sub-query are concatenated in order.
type Program struct {
	Start      NodeKey
	SubQueries []SubQuery
}

// Subgraph returns the bidirectional subgraph program for start:
// immediate successors, immediate predecessors, transitive successors, and
// transitive predecessors.
//
// The first edge hop of each transitive sub-query repeats the edges of the
// matching neighbors sub-query, so depth-1 edges appear twice in the result.
func Subgraph(start NodeKey, maxDepth int) Program {
	return Program{
		Start: start,
		SubQueries: []SubQuery{
			Neighbors{Direction: Out},
			Neighbors{Direction: In},
			Transitive{Direction: Out, MaxDepth: maxDepth},
			Transitive{Direction: In, MaxDepth: maxDepth},
		},
	}
}

// Validate checks the program before it is sent to a backend.
func (p Program) Validate() error {
	if _, err := DecodeNodeKey(p.Start); err != nil {
		return tmerr.Wrap(err, tmerr.CodeGraphTraversalInvalid, "invalid start node")
	}
	if len(p.SubQueries) == 0 {
		return tmerr.New(tmerr.CodeGraphTraversalInvalid, "program has no sub-queries", tmerr.FieldNode(string(p.Start)))
	}
	for i, sq := range p.SubQueries {
		switch q := Normalize(sq).(type) {
		case Neighbors:
			if err := validDirection(q.Direction); err != nil {
				return tmerr.With(err, tmerr.Field("sub_query", i))
			}
		case Transitive:
			if err := validDirection(q.Direction); err != nil {
				return tmerr.With(err, tmerr.Field("sub_query", i))
			}
			if q.MaxDepth < 1 {
				return tmerr.Errorf(tmerr.CodeGraphTraversalInvalid, "sub-query %d: max depth must be at least 1, got %d", i, q.MaxDepth)
			}
		case nil:
			return tmerr.Errorf(tmerr.CodeGraphTraversalInvalid, "sub-query %d is nil", i)
		default:
			return tmerr.Errorf(tmerr.CodeGraphTraversalInvalid, "sub-query %d: unsupported type %T", i, sq)
		}
	}
	return nil
}

// Normalize dereferences pointer sub-queries so callers only switch on
// value types. A nil pointer normalizes to nil.
func Normalize(sq SubQuery) SubQuery {
	switch q := sq.(type) {
	case *Neighbors:
		if q == nil {
			return nil
		}
		return *q
	case *Transitive:
		if q == nil {
			return nil
		}
		return *q
	default:
		return sq
	}
}

func validDirection(d Direction) error {
	if d != Out && d != In {
		return tmerr.Errorf(tmerr.CodeGraphTraversalInvalid, "unknown direction %d", int(d))
	}
	return nil
}
