// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tidemark-dev/tidemark/internal/graph"
	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

func newLinkCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link <job-id> <dataset-id>",
		Short: "Relate a job and a dataset",
		Long: "Record that a job produced a dataset (job_to_dataset, the default) " +
			"or consumed it (dataset_to_job).",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			direction, _ := cmd.Flags().GetString("direction")
			if !graph.LinkDirection(direction).Valid() {
				return tmerr.Errorf(tmerr.CodeCLIInputInvalid,
					"unknown direction %q (want %s or %s)", direction, graph.JobToDataset, graph.DatasetToJob)
			}

			req := map[string]string{
				"job_id":     args[0],
				"dataset_id": args[1],
				"direction":  direction,
			}
			var resp struct {
				Status    string `json:"status"`
				Direction string `json:"direction"`
			}
			if err := newServerClient(serverAddress(v)).postJSON(cmd.Context(), "/api/v1/lineage/links", req, &resp); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Linked job %s and dataset %s (%s)\n", args[0], args[1], resp.Direction)
			return err
		},
	}

	cmd.Flags().String("direction", string(graph.JobToDataset), "link direction (job_to_dataset, dataset_to_job)")

	return cmd
}
