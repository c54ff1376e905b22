// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tidemark-dev/tidemark/internal/graph"
	"github.com/tidemark-dev/tidemark/internal/lineage"
	"github.com/tidemark-dev/tidemark/pkg/health"
)

// RegisterServices sets the service dependencies and registers REST routes.
func (s *Server) RegisterServices(svc *Services) {
	s.services = svc
	s.registerRoutes()
	if svc.metrics != nil {
		s.router.Handle("/metrics", svc.metrics)
	}
}

func (s *Server) registerRoutes() {
	// Namespace endpoints
	huma.Register(s.api, huma.Operation{
		OperationID:   "create-namespace",
		Method:        http.MethodPost,
		Path:          "/api/v1/namespaces",
		Summary:       "Create a namespace",
		Tags:          []string{"namespaces"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateNamespace)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-namespace",
		Method:      http.MethodGet,
		Path:        "/api/v1/namespaces/{namespace}",
		Summary:     "Get a namespace by name",
		Tags:        []string{"namespaces"},
	}, s.handleGetNamespace)

	// Job and dataset endpoints
	huma.Register(s.api, huma.Operation{
		OperationID:   "create-job",
		Method:        http.MethodPost,
		Path:          "/api/v1/namespaces/{namespace}/jobs",
		Summary:       "Create a job",
		Tags:          []string{"jobs"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateJob)

	huma.Register(s.api, huma.Operation{
		OperationID:   "create-dataset",
		Method:        http.MethodPost,
		Path:          "/api/v1/namespaces/{namespace}/datasets",
		Summary:       "Create a dataset",
		Tags:          []string{"datasets"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateDataset)

	// Lineage endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "get-dataset-lineage",
		Method:      http.MethodGet,
		Path:        "/api/v1/datasets/{id}/lineage",
		Summary:     "Get the lineage subgraph around a dataset",
		Tags:        []string{"lineage"},
	}, s.handleDatasetLineage)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-job-lineage",
		Method:      http.MethodGet,
		Path:        "/api/v1/jobs/{id}/lineage",
		Summary:     "Get the lineage subgraph around a job",
		Tags:        []string{"lineage"},
	}, s.handleJobLineage)

	huma.Register(s.api, huma.Operation{
		OperationID: "create-lineage-link",
		Method:      http.MethodPost,
		Path:        "/api/v1/lineage/links",
		Summary:     "Relate a job and a dataset",
		Tags:        []string{"lineage"},
	}, s.handleLink)

	// Status endpoint
	huma.Register(s.api, huma.Operation{
		OperationID: "gateway-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/status",
		Summary:     "Service and graph store status",
		Tags:        []string{"system"},
	}, s.handleStatus)
}

// --- Request/Response types for huma ---

type createNamespaceInput struct {
	Body struct {
		Name        string `json:"name" minLength:"1" maxLength:"255" doc:"Unique namespace name"`
		Owner       string `json:"owner,omitempty" doc:"Owning team or user"`
		Description string `json:"description,omitempty"`
	}
}
type namespaceOutput struct {
	Status int
	Body   NamespaceResponse
}

type namespaceNameInput struct {
	Namespace string `path:"namespace"`
}

type createJobInput struct {
	Namespace string `path:"namespace"`
	Body      struct {
		Name        string `json:"name" minLength:"1" maxLength:"255"`
		Location    string `json:"location,omitempty"`
		Description string `json:"description,omitempty"`
	}
}
type jobOutput struct {
	Status int
	Body   JobResponse
}

type createDatasetInput struct {
	Namespace string `path:"namespace"`
	Body      struct {
		Name        string `json:"name" minLength:"1" maxLength:"255"`
		URN         string `json:"urn,omitempty"`
		Description string `json:"description,omitempty"`
	}
}
type datasetOutput struct {
	Status int
	Body   DatasetResponse
}

type lineageInput struct {
	ID       string `path:"id"`
	Distinct bool   `query:"distinct" doc:"Drop repeated edges"`
}
type lineageOutput struct {
	Body LineageResultsResponse
}

type linkInput struct {
	Body struct {
		JobID     string `json:"job_id" minLength:"1"`
		DatasetID string `json:"dataset_id" minLength:"1"`
		Direction string `json:"direction,omitempty" enum:"job_to_dataset,dataset_to_job" default:"job_to_dataset"`
	}
}
type linkOutput struct {
	Body struct {
		Status    string `json:"status" example:"linked"`
		Direction string `json:"direction"`
	}
}

type statusOutput struct {
	Body struct {
		Status string         `json:"status" example:"ok" enum:"ok,degraded" doc:"Gateway status"`
		Graph  health.Metrics `json:"graph" doc:"Graph store health"`
	}
}

// --- Handlers ---

func createdStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}

func (s *Server) handleCreateNamespace(ctx context.Context, input *createNamespaceInput) (*namespaceOutput, error) {
	ns, created, err := s.services.metadata.CreateNamespace(ctx, lineage.NamespaceInput{
		Name:        input.Body.Name,
		Owner:       input.Body.Owner,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, apiError(err, fmt.Sprintf("creating namespace %q", input.Body.Name))
	}
	return &namespaceOutput{Status: createdStatus(created), Body: namespaceResponse(ns)}, nil
}

func (s *Server) handleGetNamespace(ctx context.Context, input *namespaceNameInput) (*namespaceOutput, error) {
	ns, err := s.services.metadata.GetNamespace(ctx, input.Namespace)
	if err != nil {
		return nil, apiError(err, fmt.Sprintf("namespace %q", input.Namespace))
	}
	return &namespaceOutput{Status: http.StatusOK, Body: namespaceResponse(ns)}, nil
}

func (s *Server) handleCreateJob(ctx context.Context, input *createJobInput) (*jobOutput, error) {
	job, created, err := s.services.metadata.CreateJob(ctx, input.Namespace, lineage.JobInput{
		Name:        input.Body.Name,
		Location:    input.Body.Location,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, apiError(err, fmt.Sprintf("creating job %q in namespace %q", input.Body.Name, input.Namespace))
	}
	return &jobOutput{Status: createdStatus(created), Body: jobResponse(input.Namespace, job)}, nil
}

func (s *Server) handleCreateDataset(ctx context.Context, input *createDatasetInput) (*datasetOutput, error) {
	ds, created, err := s.services.metadata.CreateDataset(ctx, input.Namespace, lineage.DatasetInput{
		Name:        input.Body.Name,
		URN:         input.Body.URN,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, apiError(err, fmt.Sprintf("creating dataset %q in namespace %q", input.Body.Name, input.Namespace))
	}
	return &datasetOutput{Status: createdStatus(created), Body: datasetResponse(input.Namespace, ds)}, nil
}

func (s *Server) handleDatasetLineage(ctx context.Context, input *lineageInput) (*lineageOutput, error) {
	edges, found, err := s.services.lineage.GetDatasetLineage(ctx, input.ID)
	if err != nil {
		return nil, apiError(err, fmt.Sprintf("fetching lineage of dataset %q", input.ID))
	}
	if !found {
		return nil, huma.Error404NotFound(fmt.Sprintf("dataset %q not found", input.ID))
	}
	return lineageResult(edges, input.Distinct), nil
}

func (s *Server) handleJobLineage(ctx context.Context, input *lineageInput) (*lineageOutput, error) {
	edges, found, err := s.services.lineage.GetJobLineage(ctx, input.ID)
	if err != nil {
		return nil, apiError(err, fmt.Sprintf("fetching lineage of job %q", input.ID))
	}
	if !found {
		return nil, huma.Error404NotFound(fmt.Sprintf("job %q not found", input.ID))
	}
	return lineageResult(edges, input.Distinct), nil
}

func lineageResult(edges []lineage.Edge, distinct bool) *lineageOutput {
	if distinct {
		edges = lineage.Distinct(edges)
	}
	return &lineageOutput{Body: MapLineageResults(edges)}
}

func (s *Server) handleLink(ctx context.Context, input *linkInput) (*linkOutput, error) {
	dir := graph.LinkDirection(input.Body.Direction)
	if dir == "" {
		dir = graph.JobToDataset
	}
	if err := s.services.lineage.Link(ctx, input.Body.JobID, input.Body.DatasetID, dir); err != nil {
		return nil, apiError(err, fmt.Sprintf("linking job %q and dataset %q", input.Body.JobID, input.Body.DatasetID))
	}
	out := &linkOutput{}
	out.Body.Status = "linked"
	out.Body.Direction = string(dir)
	return out, nil
}

func (s *Server) handleStatus(_ context.Context, _ *struct{}) (*statusOutput, error) {
	out := &statusOutput{}
	out.Body.Graph = s.services.graph.Health()
	out.Body.Status = "ok"
	if !out.Body.Graph.Available {
		out.Body.Status = "degraded"
	}
	return out, nil
}
