// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tidemark-dev/tidemark/internal/secrets"
	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// serviceName is the keyring service under which tidemark stores secrets.
const serviceName = "tidemark"

// secretStoreFactory creates the secrets.Store. Tests substitute the mock
// keyring.
var secretStoreFactory = func() secrets.Store {
	return secrets.NewKeyringStore()
}

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage secrets stored in the OS keyring",
		Long: "Store and delete secrets under the tidemark keyring service. " +
			"Reference a stored secret from config as keyring://tidemark/<name>.",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <name> [value]",
			Short: "Store a secret; the value is read from stdin when omitted",
			Args:  cobra.RangeArgs(1, 2),
			RunE:  runSecretSet,
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a secret by name",
			Args:  cobra.ExactArgs(1),
			RunE:  runSecretDelete,
		},
	)

	return cmd
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	name := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return tmerr.Errorf(tmerr.CodeCLIInputInvalid, "reading secret from stdin: %w", err)
		}
		value = strings.TrimRight(string(raw), "\r\n")
	}
	if value == "" {
		return tmerr.Errorf(tmerr.CodeCLIInputInvalid, "secret %q has an empty value", name)
	}

	if err := secretStoreFactory().Set(serviceName, name, value); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Stored secret %q; reference it as keyring://%s/%s\n", name, serviceName, name)
	return err
}

func runSecretDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := secretStoreFactory().Delete(serviceName, name); err != nil {
		if tmerr.HasCode(err, tmerr.CodeSecretNotFound) {
			return tmerr.Errorf(tmerr.CodeSecretNotFound, "secret %q not found", name)
		}
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted secret %q\n", name)
	return err
}
