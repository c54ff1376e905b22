// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

// Package telemetry exports Prometheus metrics for graph store traffic and
// metadata entity creation.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tidemark-dev/tidemark/internal/graph"
)

const namespace = "tidemark"

// Metrics implements graph.Observer and lineage.EntityCounter.
type Metrics struct {
	writes        *prometheus.CounterVec
	links         *prometheus.CounterVec
	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	entities      *prometheus.CounterVec
}

// New registers the metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Labels: result (ok, or an error kind such as transport_failure)
		writes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "writes_total",
			Help:      "Triple write requests sent to the graph store",
		}, []string{"result"}),
		links: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "links_total",
			Help:      "Job/dataset links attempted, after retries",
		}, []string{"result"}),
		// Labels: kind (node, dataset, job), result
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "queries_total",
			Help:      "Subgraph queries sent to the graph store",
		}, []string{"kind", "result"}),
		queryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "query_duration_seconds",
			Help:      "Subgraph query latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		// Labels: kind (namespace, job, dataset)
		entities: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "metadata",
			Name:      "entities_total",
			Help:      "Metadata entities created",
		}, []string{"kind"}),
	}
}

// ObserveWrite counts one triple write request.
func (m *Metrics) ObserveWrite(_ int, err error) {
	m.writes.WithLabelValues(result(err)).Inc()
}

// ObserveLink counts one completed link.
func (m *Metrics) ObserveLink(err error) {
	m.links.WithLabelValues(result(err)).Inc()
}

// ObserveQuery counts one query and records its latency.
func (m *Metrics) ObserveQuery(kind string, elapsed time.Duration, err error) {
	m.queries.WithLabelValues(kind, result(err)).Inc()
	m.queryDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// EntityCreated counts one new namespace, job, or dataset.
func (m *Metrics) EntityCreated(kind string) {
	m.entities.WithLabelValues(kind).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	return graph.KindOf(err).String()
}

var _ graph.Observer = (*Metrics)(nil)
