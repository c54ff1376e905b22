// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package store

import "context"

// MetadataStore is the relational side of lineage: the namespaces, jobs and
// datasets whose relationships are mirrored into the graph store.
type MetadataStore interface {
	Namespaces() NamespaceStore
	Jobs() JobStore
	Datasets() DatasetStore
	Close() error
}

// NamespaceStore manages namespaces. Names are unique.
type NamespaceStore interface {
	Create(ctx context.Context, ns *Namespace) error
	Get(ctx context.Context, id string) (*Namespace, error)
	GetByName(ctx context.Context, name string) (*Namespace, error)
	List(ctx context.Context, opts ListOpts) ([]*Namespace, error)
}

// JobStore manages jobs. Names are unique within a namespace.
type JobStore interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	GetByName(ctx context.Context, namespaceID, name string) (*Job, error)
	List(ctx context.Context, namespaceID string, opts ListOpts) ([]*Job, error)
}

// DatasetStore manages datasets. Names are unique within a namespace.
type DatasetStore interface {
	Create(ctx context.Context, ds *Dataset) error
	Get(ctx context.Context, id string) (*Dataset, error)
	GetByName(ctx context.Context, namespaceID, name string) (*Dataset, error)
	List(ctx context.Context, namespaceID string, opts ListOpts) ([]*Dataset, error)
	Count(ctx context.Context, namespaceID string) (int64, error)
}
