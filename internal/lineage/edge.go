// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

// Package lineage resolves jobs and datasets in the metadata store and
// relates them through the graph gateway.
package lineage

import "github.com/tidemark-dev/tidemark/internal/graph"

// Edge is one lineage relationship as the service reports it.
type Edge struct {
	Subject          string
	SubjectType      string
	SubjectNamespace string
	Predicate        string
	Object           string
	ObjectType       string
	ObjectNamespace  string
}

// MapEdge converts a graph record into an Edge.
func MapEdge(r graph.EdgeRecord) Edge {
	return Edge{
		Subject:          r.Subject,
		SubjectType:      r.SubjectType,
		SubjectNamespace: r.SubjectNamespace,
		Predicate:        r.Predicate,
		Object:           r.Object,
		ObjectType:       r.ObjectType,
		ObjectNamespace:  r.ObjectNamespace,
	}
}

// MapEdges converts records in order, duplicates included. The result is
// never nil.
func MapEdges(records []graph.EdgeRecord) []Edge {
	edges := make([]Edge, 0, len(records))
	for _, r := range records {
		edges = append(edges, MapEdge(r))
	}
	return edges
}

// Distinct drops repeated edges, keeping the first occurrence of each.
func Distinct(edges []Edge) []Edge {
	seen := make(map[Edge]struct{}, len(edges))
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
