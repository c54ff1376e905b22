// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

// Package graph is the lineage graph gateway. It mirrors job and dataset
// relationships from the metadata store into a triple-oriented graph store
// and reads them back as flattened edge records.
//
// The package owns four things:
//
//   - the node key codec, which is a persisted storage contract;
//   - the triple writer, which emits the seven facts of a link;
//   - the typed subgraph traversal program, compiled to a backend's native
//     query language by the backend itself (see package gizmo);
//   - the executor and its strict result decoder.
//
// Backends register themselves with RegisterBackend from an init function,
// the same way metadata store backends do. Import a backend package for its
// side effect to make it available to NewStore:
//
//	import _ "github.com/tidemark-dev/tidemark/internal/graph/cayley"
//
// Errors carry codes from pkg/errors. KindOf maps any gateway error onto the
// small tagged set callers base retry decisions on.
package graph
