// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package lineage

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tidemark-dev/tidemark/internal/graph"
	"github.com/tidemark-dev/tidemark/internal/store"
	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// Gateway is the slice of graph.Gateway the service depends on.
type Gateway interface {
	QueryDatasetSubgraph(ctx context.Context, namespace, datasetID string) ([]graph.EdgeRecord, error)
	QueryJobSubgraph(ctx context.Context, namespace, jobID string) ([]graph.EdgeRecord, error)
	LinkJobToDataset(ctx context.Context, job, dataset graph.Entity) error
	LinkDatasetToJob(ctx context.Context, dataset, job graph.Entity) error
}

// EntityCounter is told about every newly created metadata entity.
type EntityCounter interface {
	EntityCreated(kind string)
}

type noopCounter struct{}

func (noopCounter) EntityCreated(string) {}

// Service answers lineage reads and records links.
type Service struct {
	meta    store.MetadataStore
	gateway Gateway
	counter EntityCounter
	nowFunc func() time.Time
	newID   func() string
}

// Option configures a Service.
type Option func(*Service)

// WithEntityCounter reports entity creations to c.
func WithEntityCounter(c EntityCounter) Option {
	return func(s *Service) {
		if c != nil {
			s.counter = c
		}
	}
}

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.nowFunc = now }
}

// NewService creates a Service.
func NewService(meta store.MetadataStore, gateway Gateway, opts ...Option) *Service {
	s := &Service{
		meta:    meta,
		gateway: gateway,
		counter: noopCounter{},
		nowFunc: time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetDatasetLineage returns the lineage subgraph around a dataset.
//
// found is false when the dataset is unknown; that is "no lineage
// available", distinct from a known dataset with no edges, which returns an
// empty non-nil slice. Graph store failures are returned as errors.
func (s *Service) GetDatasetLineage(ctx context.Context, datasetID string) (edges []Edge, found bool, err error) {
	ds, err := s.meta.Datasets().Get(ctx, datasetID)
	if err != nil {
		return absent(err)
	}
	ns, err := s.meta.Namespaces().Get(ctx, ds.NamespaceID)
	if err != nil {
		return absent(err)
	}

	records, err := s.gateway.QueryDatasetSubgraph(ctx, ns.Name, ds.ID)
	if err != nil {
		slog.Error("error fetching lineage",
			slog.String("dataset", ds.ID),
			slog.String("namespace", ns.Name),
			slog.String("error", err.Error()),
		)
		return nil, false, tmerr.With(err, tmerr.FieldEntityID(ds.ID), tmerr.FieldNamespace(ns.Name))
	}
	return MapEdges(records), true, nil
}

// GetJobLineage returns the lineage subgraph around a job. See
// GetDatasetLineage for the meaning of found.
func (s *Service) GetJobLineage(ctx context.Context, jobID string) (edges []Edge, found bool, err error) {
	job, err := s.meta.Jobs().Get(ctx, jobID)
	if err != nil {
		return absent(err)
	}
	ns, err := s.meta.Namespaces().Get(ctx, job.NamespaceID)
	if err != nil {
		return absent(err)
	}

	records, err := s.gateway.QueryJobSubgraph(ctx, ns.Name, job.ID)
	if err != nil {
		slog.Error("error fetching lineage",
			slog.String("job", job.ID),
			slog.String("namespace", ns.Name),
			slog.String("error", err.Error()),
		)
		return nil, false, tmerr.With(err, tmerr.FieldEntityID(job.ID), tmerr.FieldNamespace(ns.Name))
	}
	return MapEdges(records), true, nil
}

// absent turns a not-found lookup into "no lineage available" and passes
// any other error through.
func absent(err error) ([]Edge, bool, error) {
	if tmerr.IsNotFound(err) {
		return nil, false, nil
	}
	return nil, false, err
}

// LinkJobToDataset records that the job produced the dataset.
func (s *Service) LinkJobToDataset(ctx context.Context, jobID, datasetID string) error {
	return s.Link(ctx, jobID, datasetID, graph.JobToDataset)
}

// LinkDatasetToJob records that the job consumed the dataset.
func (s *Service) LinkDatasetToJob(ctx context.Context, datasetID, jobID string) error {
	return s.Link(ctx, jobID, datasetID, graph.DatasetToJob)
}

// Link relates a job and a dataset in the given direction. Unknown ids
// return not-found errors.
func (s *Service) Link(ctx context.Context, jobID, datasetID string, dir graph.LinkDirection) error {
	if !dir.Valid() {
		return tmerr.New(tmerr.CodeLineageLinkInvalid, "unknown link direction", tmerr.Field("direction", string(dir)))
	}

	job, err := s.meta.Jobs().Get(ctx, jobID)
	if err != nil {
		return err
	}
	ds, err := s.meta.Datasets().Get(ctx, datasetID)
	if err != nil {
		return err
	}
	jobEntity, err := s.entity(ctx, job.NamespaceID, job.ID, job.Name)
	if err != nil {
		return err
	}
	dsEntity, err := s.entity(ctx, ds.NamespaceID, ds.ID, ds.Name)
	if err != nil {
		return err
	}

	if dir == graph.JobToDataset {
		err = s.gateway.LinkJobToDataset(ctx, jobEntity, dsEntity)
	} else {
		err = s.gateway.LinkDatasetToJob(ctx, dsEntity, jobEntity)
	}
	if err != nil {
		return err
	}

	slog.Info("linked lineage",
		slog.String("job", job.ID),
		slog.String("dataset", ds.ID),
		slog.String("direction", string(dir)),
	)
	return nil
}

func (s *Service) entity(ctx context.Context, namespaceID, id, name string) (graph.Entity, error) {
	ns, err := s.meta.Namespaces().Get(ctx, namespaceID)
	if err != nil {
		return graph.Entity{}, err
	}
	return graph.Entity{Namespace: ns.Name, ID: id, Name: name}, nil
}
