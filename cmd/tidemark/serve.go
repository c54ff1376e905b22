// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tidemark-dev/tidemark/internal/config"
	"github.com/tidemark-dev/tidemark/internal/secrets"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the tidemark server",
		Long:  "Load configuration, open the metadata and graph stores, and start the HTTP server.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, v)
		},
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	cmd.Flags().String("db", "", "override metadata database path")
	cmd.Flags().String("graph-backend", "", "override graph backend (cayley, memory)")
	cmd.Flags().String("graph-url", "", "override graph store URL")
	_ = v.BindPFlag("networking.listen", cmd.Flags().Lookup("listen"))
	_ = v.BindPFlag("storage.path", cmd.Flags().Lookup("db"))
	_ = v.BindPFlag("graph.backend", cmd.Flags().Lookup("graph-backend"))
	_ = v.BindPFlag("graph.url", cmd.Flags().Lookup("graph-url"))

	return cmd
}

func runServe(cmd *cobra.Command, v *viper.Viper) error {
	if n := secrets.ResolveViper(v, secretStoreFactory()); n > 0 {
		slog.Debug("resolved keyring references", "count", n)
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	config.WarnInsecurePermissions(v.ConfigFileUsed())

	app, err := Wire(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Warn("closing subsystems", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Starting tidemark on %s (graph: %s, metadata: %s)\n",
		cfg.Networking.Listen, cfg.Graph.Backend, cfg.Storage.Path)
	slog.Info("server starting",
		"listen", cfg.Networking.Listen,
		"graph_backend", cfg.Graph.Backend,
		"max_depth", cfg.Graph.MaxDepth,
	)

	return app.Server.Start(ctx)
}
