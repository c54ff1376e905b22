// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package graph

import (
	"context"

	"github.com/tidemark-dev/tidemark/pkg/health"
)

// Config configures a Gateway.
type Config struct {
	// MaxDepth bounds transitive traversal. Zero means DefaultMaxDepth.
	MaxDepth int
	Writer   WriterConfig
}

// Gateway mirrors job and dataset relationships into a graph store and
// answers bounded subgraph queries against it.
//
// Gateway holds no mutable state of its own and is safe for concurrent use
// if the Store is.
type Gateway struct {
	store    Store
	maxDepth int
	writer   *Writer
	executor *Executor
	health   *HealthTracker
}

// NewGateway wires a Gateway over store. Every observer sees every remote
// call, after the gateway's own health tracker.
func NewGateway(store Store, cfg Config, obs ...Observer) *Gateway {
	depth := cfg.MaxDepth
	if depth <= 0 {
		depth = DefaultMaxDepth
	}
	tracker := newHealthTracker(DefaultHealthCooldown)
	observer := MultiObserver(append([]Observer{tracker}, obs...)...)
	return &Gateway{
		store:    store,
		maxDepth: depth,
		writer:   NewWriter(store, cfg.Writer, observer),
		executor: NewExecutor(store, observer),
		health:   tracker,
	}
}

// MaxDepth returns the effective traversal bound.
func (g *Gateway) MaxDepth() int { return g.maxDepth }

// QueryNodeSubgraph returns every edge within MaxDepth hops of key.
func (g *Gateway) QueryNodeSubgraph(ctx context.Context, key NodeKey) ([]EdgeRecord, error) {
	return g.executor.Execute(ctx, "node", Subgraph(key, g.maxDepth))
}

// QueryDatasetSubgraph returns the lineage subgraph around a dataset.
func (g *Gateway) QueryDatasetSubgraph(ctx context.Context, namespace, datasetID string) ([]EdgeRecord, error) {
	key, err := EncodeNodeKey(namespace, datasetID, KindDataset)
	if err != nil {
		return nil, err
	}
	return g.executor.Execute(ctx, string(KindDataset), Subgraph(key, g.maxDepth))
}

// QueryJobSubgraph returns the lineage subgraph around a job.
func (g *Gateway) QueryJobSubgraph(ctx context.Context, namespace, jobID string) ([]EdgeRecord, error) {
	key, err := EncodeNodeKey(namespace, jobID, KindJob)
	if err != nil {
		return nil, err
	}
	return g.executor.Execute(ctx, string(KindJob), Subgraph(key, g.maxDepth))
}

// LinkJobToDataset records that job produced dataset.
func (g *Gateway) LinkJobToDataset(ctx context.Context, job, dataset Entity) error {
	return g.writer.Link(ctx, LinkRequest{Job: job, Dataset: dataset, Direction: JobToDataset})
}

// LinkDatasetToJob records that job consumed dataset.
func (g *Gateway) LinkDatasetToJob(ctx context.Context, dataset, job Entity) error {
	return g.writer.Link(ctx, LinkRequest{Job: job, Dataset: dataset, Direction: DatasetToJob})
}

// Health reports graph store reachability as seen by recent calls.
func (g *Gateway) Health() health.Metrics {
	return g.health.Metrics()
}

// Close releases the underlying store.
func (g *Gateway) Close() error {
	return g.store.Close()
}
