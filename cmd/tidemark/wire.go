// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tidemark-dev/tidemark/internal/config"
	"github.com/tidemark-dev/tidemark/internal/graph"
	"github.com/tidemark-dev/tidemark/internal/lineage"
	"github.com/tidemark-dev/tidemark/internal/server"
	"github.com/tidemark-dev/tidemark/internal/store"
	"github.com/tidemark-dev/tidemark/internal/telemetry"
	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"

	// Backends register themselves in init().
	_ "github.com/tidemark-dev/tidemark/internal/graph/cayley"
	_ "github.com/tidemark-dev/tidemark/internal/graph/memgraph"
	_ "github.com/tidemark-dev/tidemark/internal/store/sqlite"
)

// App holds the wired subsystems of a running server.
type App struct {
	Server   *server.Server
	Gateway  *graph.Gateway
	Metadata store.MetadataStore
	Registry *prometheus.Registry
}

// Wire opens the stores and connects them to the REST server.
func Wire(cfg *config.Config) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.New(reg)

	sc := cfg.Storage.StoreConfig()
	meta, err := store.NewMetadataStore(&sc)
	if err != nil {
		return nil, tmerr.With(err, tmerr.Field("path", sc.Path))
	}

	gs, err := graph.NewStore(cfg.Graph.BackendConfig())
	if err != nil {
		_ = meta.Close()
		return nil, err
	}
	gw := graph.NewGateway(gs, cfg.Graph.GatewayConfig(), metrics)
	svc := lineage.NewService(meta, gw, lineage.WithEntityCounter(metrics))

	srv, err := server.New(server.Config{
		ListenAddr:  cfg.Networking.Listen,
		CORSOrigins: cfg.Networking.CORSOrigins,
		RateLimit: server.RateLimitConfig{
			RequestsPerSecond: cfg.Networking.RateLimit.RequestsPerSecond,
			Burst:             cfg.Networking.RateLimit.Burst,
		},
	})
	if err != nil {
		_ = gw.Close()
		_ = meta.Close()
		return nil, err
	}

	services, err := server.NewServices(svc, svc, gw, telemetry.Handler(reg))
	if err != nil {
		_ = srv.Close()
		_ = gw.Close()
		_ = meta.Close()
		return nil, err
	}
	srv.RegisterServices(services)

	return &App{Server: srv, Gateway: gw, Metadata: meta, Registry: reg}, nil
}

// Close releases every subsystem, reporting all failures.
func (a *App) Close() error {
	var errs []error
	for _, closer := range []func() error{a.Server.Close, a.Gateway.Close, a.Metadata.Close} {
		if err := closer(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return tmerr.Join(errs...)
	}
	return nil
}
