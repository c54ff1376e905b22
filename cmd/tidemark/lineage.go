// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// lineageEdge mirrors the server's lineage result on the wire.
type lineageEdge struct {
	Subject          string `json:"subject" yaml:"subject"`
	SubjectType      string `json:"subject_type" yaml:"subject_type"`
	SubjectNamespace string `json:"subject_namespace" yaml:"subject_namespace"`
	Predicate        string `json:"predicate" yaml:"predicate"`
	Object           string `json:"object" yaml:"object"`
	ObjectType       string `json:"object_type" yaml:"object_type"`
	ObjectNamespace  string `json:"object_namespace" yaml:"object_namespace"`
}

type lineageResults struct {
	Result []lineageEdge `json:"result" yaml:"result"`
}

func newLineageCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lineage",
		Short: "Show lineage around a dataset or job",
		Long:  "Fetch the bounded upstream and downstream lineage subgraph of a dataset or job from a running server.",
	}

	cmd.PersistentFlags().StringP("output", "o", "text", "output format (text, json, yaml)")
	cmd.PersistentFlags().Bool("distinct", false, "drop repeated edges")

	cmd.AddCommand(
		newLineageEntityCmd(v, "dataset", "datasets"),
		newLineageEntityCmd(v, "job", "jobs"),
	)

	return cmd
}

func newLineageEntityCmd(v *viper.Viper, kind, collection string) *cobra.Command {
	return &cobra.Command{
		Use:   kind + " <id>",
		Short: "Show lineage around a " + kind,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			distinct, _ := cmd.Flags().GetBool("distinct")
			if err := validOutput(output); err != nil {
				return err
			}

			path := "/api/v1/" + collection + "/" + url.PathEscape(args[0]) + "/lineage"
			if distinct {
				path += "?distinct=true"
			}

			var res lineageResults
			if err := newServerClient(serverAddress(v)).getJSON(cmd.Context(), path, &res); err != nil {
				return err
			}
			return writeLineage(cmd.OutOrStdout(), output, res)
		},
	}
}

func validOutput(output string) error {
	switch output {
	case "text", "json", "yaml":
		return nil
	default:
		return tmerr.Errorf(tmerr.CodeCLIInputInvalid, "unknown output format %q (want text, json, or yaml)", output)
	}
}

func writeLineage(w io.Writer, output string, res lineageResults) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	default:
		if len(res.Result) == 0 {
			_, err := fmt.Fprintln(w, "No lineage edges")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "SUBJECT\tTYPE\tNAMESPACE\t\tOBJECT\tTYPE\tNAMESPACE")
		for _, e := range res.Result {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t->\t%s\t%s\t%s\n",
				e.Subject, e.SubjectType, e.SubjectNamespace,
				e.Object, e.ObjectType, e.ObjectNamespace)
		}
		return tw.Flush()
	}
}
