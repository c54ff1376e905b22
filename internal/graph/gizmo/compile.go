// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

// Package gizmo translates typed traversal programs into Gizmo, the
// JavaScript-based query language served by Cayley at /api/v1/query/gizmo.
package gizmo

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidemark-dev/tidemark/internal/graph"
	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// Engine is the query endpoint name for this language.
const Engine = "gizmo"

// emitEdgeFunc resolves both endpoint attributes of one "to" edge and emits
// it as a record. ToValue yields null for a missing attribute, which the
// result decoder rejects.
const emitEdgeFunc = `function emitEdge(subject, object) {
  g.Emit({
    subject: g.V(subject).Out("name").ToValue(),
    subject_type: g.V(subject).Out("type").ToValue(),
    subject_namespace: g.V(subject).Out("namespace").ToValue(),
    predicate: "to",
    object: g.V(object).Out("name").ToValue(),
    object_type: g.V(object).Out("type").ToValue(),
    object_namespace: g.V(object).Out("namespace").ToValue()
  });
}
`

// Compiler builds Gizmo scripts. The zero value is ready to use.
//
// Every value taken from the program is written as a JSON literal, never
// spliced into the script as raw text. Output is deterministic for a given
// program.
type Compiler struct{}

// NewCompiler creates a new Compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile validates p and returns its Gizmo script.
func (c *Compiler) Compile(p graph.Program) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	start, err := json.Marshal(string(p.Start))
	if err != nil {
		return "", tmerr.Wrap(err, tmerr.CodeGraphTraversalInvalid, "encode start node")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "var start = %s;\n", start)
	b.WriteString(emitEdgeFunc)
	for _, sq := range p.SubQueries {
		switch q := graph.Normalize(sq).(type) {
		case graph.Neighbors:
			c.compileNeighbors(&b, q)
		case graph.Transitive:
			c.compileTransitive(&b, q)
		}
	}
	return b.String(), nil
}

func (c *Compiler) compileNeighbors(b *strings.Builder, q graph.Neighbors) {
	if q.Direction == graph.Out {
		b.WriteString(`g.V(start).Out("to").ForEach(function(v) { emitEdge(start, v.id); });` + "\n")
		return
	}
	b.WriteString(`g.V(start).In("to").ForEach(function(v) { emitEdge(v.id, start); });` + "\n")
}

// compileTransitive iterates the start node plus everything FollowRecursive
// reaches within MaxDepth-1 hops. FollowRecursive never yields its own
// starting vertex, hence the Union.
func (c *Compiler) compileTransitive(b *strings.Builder, q graph.Transitive) {
	step, emit := `Out("to")`, `emitEdge(v.id, t.id)`
	if q.Direction == graph.In {
		step, emit = `In("to")`, `emitEdge(t.id, v.id)`
	}

	reach := "g.V(start)"
	if q.MaxDepth > 1 {
		reach = fmt.Sprintf("g.V(start).Union(g.V(start).FollowRecursive(g.M().%s, %d))", step, q.MaxDepth-1)
	}
	fmt.Fprintf(b, "%s.ForEach(function(v) {\n", reach)
	fmt.Fprintf(b, "  g.V(v.id).%s.ForEach(function(t) { %s; });\n", step, emit)
	b.WriteString("});\n")
}
