// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/tidemark-dev/tidemark/internal/graph"
	"github.com/tidemark-dev/tidemark/internal/lineage"
	"github.com/tidemark-dev/tidemark/internal/store"
	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
	"github.com/tidemark-dev/tidemark/pkg/health"
)

// Services holds dependencies injected into route handlers.
// Each field is an interface so subsystems can be mocked in tests.
// Use NewServices constructor to ensure all required services are provided.
type Services struct {
	lineage  LineageService
	metadata MetadataService
	graph    GraphHealth
	metrics  http.Handler // optional; nil = no /metrics endpoint
}

// NewServices creates a Services instance with validation.
// Returns an error if any required service is nil.
func NewServices(l LineageService, m MetadataService, g GraphHealth, metrics http.Handler) (*Services, error) {
	if l == nil {
		return nil, tmerr.New(tmerr.CodeServerConfigInvalid, "lineage service is required")
	}
	if m == nil {
		return nil, tmerr.New(tmerr.CodeServerConfigInvalid, "metadata service is required")
	}
	if g == nil {
		return nil, tmerr.New(tmerr.CodeServerConfigInvalid, "graph health source is required")
	}
	return &Services{lineage: l, metadata: m, graph: g, metrics: metrics}, nil
}

// LineageService answers lineage reads and records links.
// A false found result means the entity is unknown.
type LineageService interface {
	GetDatasetLineage(ctx context.Context, datasetID string) (edges []lineage.Edge, found bool, err error)
	GetJobLineage(ctx context.Context, jobID string) (edges []lineage.Edge, found bool, err error)
	Link(ctx context.Context, jobID, datasetID string, dir graph.LinkDirection) error
}

// MetadataService creates and looks up namespaces, jobs, and datasets.
// Creates return the existing entity when the name is taken.
type MetadataService interface {
	CreateNamespace(ctx context.Context, in lineage.NamespaceInput) (*store.Namespace, bool, error)
	GetNamespace(ctx context.Context, name string) (*store.Namespace, error)
	CreateJob(ctx context.Context, namespace string, in lineage.JobInput) (*store.Job, bool, error)
	CreateDataset(ctx context.Context, namespace string, in lineage.DatasetInput) (*store.Dataset, bool, error)
}

// GraphHealth reports graph store reachability.
type GraphHealth interface {
	Health() health.Metrics
}

// NamespaceResponse is the REST representation of a namespace.
type NamespaceResponse struct {
	ID          string    `json:"id" doc:"Namespace identifier"`
	Name        string    `json:"name" doc:"Unique namespace name"`
	Owner       string    `json:"owner,omitempty" doc:"Owning team or user"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// JobResponse is the REST representation of a job.
type JobResponse struct {
	ID          string    `json:"id" doc:"Job identifier"`
	Namespace   string    `json:"namespace" doc:"Namespace name"`
	Name        string    `json:"name" doc:"Job name, unique within the namespace"`
	Location    string    `json:"location,omitempty" doc:"Source location of the job"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DatasetResponse is the REST representation of a dataset.
type DatasetResponse struct {
	ID          string    `json:"id" doc:"Dataset identifier"`
	Namespace   string    `json:"namespace" doc:"Namespace name"`
	Name        string    `json:"name" doc:"Dataset name, unique within the namespace"`
	URN         string    `json:"urn,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func namespaceResponse(ns *store.Namespace) NamespaceResponse {
	return NamespaceResponse{
		ID:          ns.ID,
		Name:        ns.Name,
		Owner:       ns.Owner,
		Description: ns.Description,
		CreatedAt:   ns.CreatedAt,
	}
}

func jobResponse(namespace string, j *store.Job) JobResponse {
	return JobResponse{
		ID:          j.ID,
		Namespace:   namespace,
		Name:        j.Name,
		Location:    j.Location,
		Description: j.Description,
		CreatedAt:   j.CreatedAt,
	}
}

func datasetResponse(namespace string, d *store.Dataset) DatasetResponse {
	return DatasetResponse{
		ID:          d.ID,
		Namespace:   namespace,
		Name:        d.Name,
		URN:         d.URN,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
}
