// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package server

import "github.com/tidemark-dev/tidemark/internal/lineage"

// LineageResultResponse is one lineage edge on the wire.
type LineageResultResponse struct {
	Subject          string `json:"subject" doc:"Subject display name"`
	SubjectType      string `json:"subject_type" enum:"job,dataset"`
	SubjectNamespace string `json:"subject_namespace"`
	Predicate        string `json:"predicate" example:"to"`
	Object           string `json:"object" doc:"Object display name"`
	ObjectType       string `json:"object_type" enum:"job,dataset"`
	ObjectNamespace  string `json:"object_namespace"`
}

// LineageResultsResponse is the body of a lineage read.
type LineageResultsResponse struct {
	Result []LineageResultResponse `json:"result"`
}

// MapLineageResult converts one service edge.
func MapLineageResult(e lineage.Edge) LineageResultResponse {
	return LineageResultResponse{
		Subject:          e.Subject,
		SubjectType:      e.SubjectType,
		SubjectNamespace: e.SubjectNamespace,
		Predicate:        e.Predicate,
		Object:           e.Object,
		ObjectType:       e.ObjectType,
		ObjectNamespace:  e.ObjectNamespace,
	}
}

// MapLineageResults converts edges in order. Result is never nil, so an
// empty lineage encodes as [].
func MapLineageResults(edges []lineage.Edge) LineageResultsResponse {
	out := LineageResultsResponse{Result: make([]LineageResultResponse, 0, len(edges))}
	for _, e := range edges {
		out.Result = append(out.Result, MapLineageResult(e))
	}
	return out
}
