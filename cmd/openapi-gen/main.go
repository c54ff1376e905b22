// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidemark-dev/tidemark/internal/graph"
	"github.com/tidemark-dev/tidemark/internal/lineage"
	"github.com/tidemark-dev/tidemark/internal/server"
	"github.com/tidemark-dev/tidemark/internal/store"
	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
	"github.com/tidemark-dev/tidemark/pkg/health"
)

func main() {
	doc, err := generateDocument()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	outPath := "api/openapi/tidemark.json"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, doc, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing document: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OpenAPI document written to %s\n", outPath)
}

// generateDocument registers every route against stub services and returns the
// OpenAPI document huma derives from the route types.
func generateDocument() ([]byte, error) {
	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"})
	if err != nil {
		return nil, tmerr.Errorf(tmerr.CodeCLISetupFailure, "creating server: %w", err)
	}
	defer func() { _ = srv.Close() }()

	svc, err := server.NewServices(stubLineage{}, stubMetadata{}, stubHealth{}, nil)
	if err != nil {
		return nil, tmerr.Errorf(tmerr.CodeCLISetupFailure, "creating services: %w", err)
	}
	srv.RegisterServices(svc)

	return json.MarshalIndent(srv.API().OpenAPI(), "", "  ")
}

// Stubs are never called during generation.

type stubLineage struct{}

func (stubLineage) GetDatasetLineage(context.Context, string) ([]lineage.Edge, bool, error) {
	return nil, false, nil
}

func (stubLineage) GetJobLineage(context.Context, string) ([]lineage.Edge, bool, error) {
	return nil, false, nil
}

func (stubLineage) Link(context.Context, string, string, graph.LinkDirection) error { return nil }

type stubMetadata struct{}

func (stubMetadata) CreateNamespace(context.Context, lineage.NamespaceInput) (*store.Namespace, bool, error) {
	return nil, false, nil
}

func (stubMetadata) GetNamespace(context.Context, string) (*store.Namespace, error) { return nil, nil }

func (stubMetadata) CreateJob(context.Context, string, lineage.JobInput) (*store.Job, bool, error) {
	return nil, false, nil
}

func (stubMetadata) CreateDataset(context.Context, string, lineage.DatasetInput) (*store.Dataset, bool, error) {
	return nil, false, nil
}

type stubHealth struct{}

func (stubHealth) Health() health.Metrics { return health.Metrics{Available: true} }
