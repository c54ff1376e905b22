// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tidemark-dev/tidemark/internal/config"
	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// NewRootCmd creates the root tidemark command with all subcommands registered.
// Each root owns its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "tidemark",
		Short:         "Tidemark: dataset and job lineage",
		Long:          "Tidemark records which jobs produce and consume which datasets and answers lineage queries over a graph store.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initViper(cmd, v); err != nil {
				return err
			}
			setupLogging(cmd.ErrOrStderr(), v)
			return nil
		},
	}

	// Global flags. These map to viper keys via initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	root.PersistentFlags().String("address", "", "server address (host:port); defaults to networking.listen")

	root.AddCommand(
		newServeCmd(v),
		newStatusCmd(v),
		newLineageCmd(v),
		newLinkCmd(v),
		newSecretCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper sets up v with defaults, env bindings, flag bindings, and an
// optional config file so the standard precedence (flag > env > file >
// defaults) is handled uniformly.
func initViper(cmd *cobra.Command, v *viper.Viper) error {
	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return tmerr.Errorf(tmerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// SetConfigType is omitted so viper never tries the bare name,
		// which would match a ./tidemark binary.
		v.SetConfigName("tidemark")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/tidemark")
		v.AddConfigPath("/etc/tidemark")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return tmerr.Errorf(tmerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
			if cmd.Name() == "serve" {
				if err := bootstrapConfig(v); err != nil {
					return err
				}
			}
		}
	}

	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return tmerr.Errorf(tmerr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}
	if err := v.BindPFlag("address", cmd.Root().PersistentFlags().Lookup("address")); err != nil {
		return tmerr.Errorf(tmerr.CodeCLISetupFailure, "binding address flag: %w", err)
	}

	return nil
}

// bootstrapConfig writes a default config to ~/.config/tidemark on first
// serve and loads it.
func bootstrapConfig(v *viper.Viper) error {
	path, err := config.DefaultConfigPath()
	if err != nil {
		slog.Debug("skipping config bootstrap", "error", err)
		return nil
	}
	if written := config.BootstrapConfig(path); written != "" {
		v.SetConfigFile(written)
		if err := v.ReadInConfig(); err != nil {
			return tmerr.Errorf(tmerr.CodeConfigLoadReadFailure, "reading bootstrapped config: %w", err)
		}
	}
	return nil
}

// setupLogging installs the default slog handler from log.level and
// log.format. --verbose forces debug.
func setupLogging(w io.Writer, v *viper.Viper) {
	lc := config.LogConfig{Level: v.GetString("log.level"), Format: v.GetString("log.format")}
	level := lc.SlogLevel()
	if v.GetBool("verbose") {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// serverAddress returns --address, falling back to networking.listen.
func serverAddress(v *viper.Viper) string {
	if addr := v.GetString("address"); addr != "" {
		return addr
	}
	return v.GetString("networking.listen")
}
