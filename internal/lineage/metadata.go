// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package lineage

import (
	"context"

	"github.com/tidemark-dev/tidemark/internal/store"
	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// NamespaceInput describes a namespace to create.
type NamespaceInput struct {
	Name        string
	Owner       string
	Description string
}

// JobInput describes a job to create.
type JobInput struct {
	Name        string
	Location    string
	Description string
}

// DatasetInput describes a dataset to create.
type DatasetInput struct {
	Name        string
	URN         string
	Description string
}

// CreateNamespace returns the namespace named in.Name, creating it first if
// needed. created reports whether it was new. Losing a concurrent create
// returns the winner's row with created false.
func (s *Service) CreateNamespace(ctx context.Context, in NamespaceInput) (ns *store.Namespace, created bool, err error) {
	existing, err := s.meta.Namespaces().GetByName(ctx, in.Name)
	if err == nil {
		return existing, false, nil
	}
	if !tmerr.IsNotFound(err) {
		return nil, false, err
	}

	now := s.nowFunc()
	ns = &store.Namespace{
		ID:          s.newID(),
		Name:        in.Name,
		Owner:       in.Owner,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.meta.Namespaces().Create(ctx, ns); err != nil {
		if tmerr.IsConflict(err) {
			if winner, rerr := s.meta.Namespaces().GetByName(ctx, in.Name); rerr == nil {
				return winner, false, nil
			}
		}
		return nil, false, err
	}
	s.counter.EntityCreated("namespace")
	return ns, true, nil
}

// GetNamespace looks a namespace up by name.
func (s *Service) GetNamespace(ctx context.Context, name string) (*store.Namespace, error) {
	return s.meta.Namespaces().GetByName(ctx, name)
}

// CreateJob returns the job named in.Name within the namespace, creating it
// first if needed.
func (s *Service) CreateJob(ctx context.Context, namespace string, in JobInput) (job *store.Job, created bool, err error) {
	ns, err := s.meta.Namespaces().GetByName(ctx, namespace)
	if err != nil {
		return nil, false, err
	}
	existing, err := s.meta.Jobs().GetByName(ctx, ns.ID, in.Name)
	if err == nil {
		return existing, false, nil
	}
	if !tmerr.IsNotFound(err) {
		return nil, false, err
	}

	now := s.nowFunc()
	job = &store.Job{
		ID:          s.newID(),
		NamespaceID: ns.ID,
		Name:        in.Name,
		Location:    in.Location,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.meta.Jobs().Create(ctx, job); err != nil {
		if tmerr.IsConflict(err) {
			if winner, rerr := s.meta.Jobs().GetByName(ctx, ns.ID, in.Name); rerr == nil {
				return winner, false, nil
			}
		}
		return nil, false, err
	}
	s.counter.EntityCreated("job")
	return job, true, nil
}

// CreateDataset returns the dataset named in.Name within the namespace,
// creating it first if needed.
func (s *Service) CreateDataset(ctx context.Context, namespace string, in DatasetInput) (ds *store.Dataset, created bool, err error) {
	ns, err := s.meta.Namespaces().GetByName(ctx, namespace)
	if err != nil {
		return nil, false, err
	}
	existing, err := s.meta.Datasets().GetByName(ctx, ns.ID, in.Name)
	if err == nil {
		return existing, false, nil
	}
	if !tmerr.IsNotFound(err) {
		return nil, false, err
	}

	now := s.nowFunc()
	ds = &store.Dataset{
		ID:          s.newID(),
		NamespaceID: ns.ID,
		Name:        in.Name,
		URN:         in.URN,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.meta.Datasets().Create(ctx, ds); err != nil {
		if tmerr.IsConflict(err) {
			if winner, rerr := s.meta.Datasets().GetByName(ctx, ns.ID, in.Name); rerr == nil {
				return winner, false, nil
			}
		}
		return nil, false, err
	}
	s.counter.EntityCreated("dataset")
	return ds, true, nil
}
