// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
	"github.com/tidemark-dev/tidemark/pkg/health"
)

func newStatusCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server status",
		Long:  "Check the running server's status endpoint and display graph store health.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, v)
		},
	}
}

func runStatus(cmd *cobra.Command, v *viper.Viper) error {
	addr := serverAddress(v)
	out := cmd.OutOrStdout()

	var body struct {
		Status string         `json:"status"`
		Graph  health.Metrics `json:"graph"`
	}
	if err := newServerClient(addr).getJSON(cmd.Context(), "/api/v1/status", &body); err != nil {
		if tmerr.HasCode(err, tmerr.CodeCLIServerNotRunning) {
			_, _ = fmt.Fprintf(out, "Tidemark at %s is not running (connection refused)\n", addr)
			return nil
		}
		_, _ = fmt.Fprintf(out, "Tidemark at %s: %s\n", addr, err)
		return nil
	}

	_, _ = fmt.Fprintf(out, "Tidemark at %s: %s\n", addr, body.Status)
	graphState := "available"
	if !body.Graph.Available {
		graphState = "unavailable"
	}
	_, _ = fmt.Fprintf(out, "Graph store: %s (failures: %d)\n", graphState, body.Graph.FailureCount)
	if body.Graph.LastFailureAt != nil {
		_, _ = fmt.Fprintf(out, "Last failure: %s\n", body.Graph.LastFailureAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	return nil
}
