// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tidemark-dev/tidemark/internal/config"
	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5000", cfg.Networking.Listen)
	assert.Empty(t, cfg.Networking.CORSOrigins)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "tidemark.db", cfg.Storage.Path)
	assert.Equal(t, "cayley", cfg.Graph.Backend)
	assert.Equal(t, "localhost", cfg.Graph.Host)
	assert.Equal(t, 64210, cfg.Graph.Port)
	assert.Equal(t, "gizmo", cfg.Graph.Engine)
	assert.Equal(t, 10*time.Second, cfg.Graph.Timeout)
	assert.Equal(t, 5, cfg.Graph.MaxDepth)
	assert.False(t, cfg.Graph.BatchWrites)
	assert.Equal(t, 1, cfg.Graph.Link.MaxAttempts)
	assert.Equal(t, 200*time.Millisecond, cfg.Graph.Link.RetryBackoff)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_FromFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "tidemark.yaml")
	content := `
networking:
  listen: "0.0.0.0:9999"
  cors_origins: ["https://ui.example.com"]
graph:
  url: "http://cayley.internal:64210"
  max_depth: 3
  batch_writes: true
  link:
    max_attempts: 4
    retry_backoff: 1s
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", cfg.Networking.Listen)
	assert.Equal(t, []string{"https://ui.example.com"}, cfg.Networking.CORSOrigins)
	assert.Equal(t, "http://cayley.internal:64210", cfg.Graph.URL)
	assert.Equal(t, 3, cfg.Graph.MaxDepth)
	assert.True(t, cfg.Graph.BatchWrites)
	assert.Equal(t, 4, cfg.Graph.Link.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Graph.Link.RetryBackoff)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TIDEMARK_NETWORKING_LISTEN", "10.0.0.1:8080")
	t.Setenv("TIDEMARK_GRAPH_MAX_DEPTH", "7")
	t.Setenv("TIDEMARK_GRAPH_BACKEND", "memory")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:8080", cfg.Networking.Listen)
	assert.Equal(t, 7, cfg.Graph.MaxDepth)
	assert.Equal(t, "memory", cfg.Graph.Backend)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, tmerr.HasCode(err, tmerr.CodeConfigLoadReadFailure))
}

func TestLoad_ValidationCalledAtLoadTime(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "tidemark.yaml")
	content := `
graph:
  backend: "neo4j"
  max_depth: 0
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	_, err := config.Load(cfgPath)
	require.Error(t, err)
	assert.True(t, tmerr.HasCode(err, tmerr.CodeConfigValidateInvalidValue))
	assert.Contains(t, err.Error(), "graph.backend")
	assert.Contains(t, err.Error(), "graph.max_depth")
}

func TestFromViper_FlagStyleOverride(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("graph.port", 7000)

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Graph.Port)
}

// validConfig returns a config that passes all validation.
func validConfig() *config.Config {
	return &config.Config{
		Networking: config.NetworkingConfig{Listen: "127.0.0.1:5000"},
		Storage:    config.StorageConfig{Backend: "sqlite", Path: "tidemark.db"},
		Graph: config.GraphConfig{
			Backend:  "cayley",
			Host:     "localhost",
			Port:     64210,
			Engine:   "gizmo",
			Timeout:  10 * time.Second,
			MaxDepth: 5,
			Link:     config.LinkConfig{MaxAttempts: 1, RetryBackoff: 200 * time.Millisecond},
		},
		Log: config.LogConfig{Level: "info", Format: "text"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.Empty(t, validConfig().Validate())
}

func TestValidate_Table(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantKey string
	}{
		{"empty listen", func(c *config.Config) { c.Networking.Listen = "" }, "networking.listen"},
		{"listen without port", func(c *config.Config) { c.Networking.Listen = "localhost" }, "networking.listen"},
		{"listen port not numeric", func(c *config.Config) { c.Networking.Listen = "localhost:http" }, "networking.listen port"},
		{"listen port out of range", func(c *config.Config) { c.Networking.Listen = ":70000" }, "networking.listen port"},
		{"negative rate", func(c *config.Config) { c.Networking.RateLimit.RequestsPerSecond = -1 }, "requests_per_second"},
		{"rate without burst", func(c *config.Config) { c.Networking.RateLimit.RequestsPerSecond = 5 }, "rate_limit.burst"},
		{"storage backend", func(c *config.Config) { c.Storage.Backend = "postgres" }, "storage.backend"},
		{"storage path", func(c *config.Config) { c.Storage.Path = "" }, "storage.path"},
		{"graph backend", func(c *config.Config) { c.Graph.Backend = "neo4j" }, "graph.backend"},
		{"graph engine", func(c *config.Config) { c.Graph.Engine = "graphql" }, "graph.engine"},
		{"graph url scheme", func(c *config.Config) { c.Graph.URL = "ftp://cayley" }, "graph.url"},
		{"graph url relative", func(c *config.Config) { c.Graph.URL = "cayley:64210" }, "graph.url"},
		{"graph port", func(c *config.Config) { c.Graph.Port = 0 }, "graph.port"},
		{"graph timeout", func(c *config.Config) { c.Graph.Timeout = -time.Second }, "graph.timeout"},
		{"max depth", func(c *config.Config) { c.Graph.MaxDepth = 0 }, "graph.max_depth"},
		{"max attempts", func(c *config.Config) { c.Graph.Link.MaxAttempts = 0 }, "graph.link.max_attempts"},
		{"retry backoff", func(c *config.Config) { c.Graph.Link.RetryBackoff = -time.Millisecond }, "graph.link.retry_backoff"},
		{"log level", func(c *config.Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			errs := cfg.Validate()
			require.Len(t, errs, 1, "errors: %v", errs)
			assert.Contains(t, errs[0].Error(), tt.wantKey)
			assert.True(t, tmerr.HasCode(errs[0], tmerr.CodeConfigValidateInvalidValue))
		})
	}
}

func TestValidate_URLSkipsPortCheck(t *testing.T) {
	cfg := validConfig()
	cfg.Graph.URL = "https://cayley.example.com"
	cfg.Graph.Port = 0
	assert.Empty(t, cfg.Validate())
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &config.Config{}
	errs := cfg.Validate()

	var joined []string
	for _, err := range errs {
		joined = append(joined, err.Error())
	}
	all := strings.Join(joined, "\n")
	for _, key := range []string{"networking.listen", "storage.backend", "graph.backend", "graph.max_depth", "log.level"} {
		assert.Contains(t, all, key)
	}
}

func TestGraphConfig_Conversions(t *testing.T) {
	cfg := validConfig()
	cfg.Graph.BatchWrites = true
	cfg.Graph.Link.MaxAttempts = 3

	bc := cfg.Graph.BackendConfig()
	assert.Equal(t, "cayley", bc.Backend)
	assert.Equal(t, 64210, bc.Port)
	assert.Equal(t, 10*time.Second, bc.Timeout)

	gc := cfg.Graph.GatewayConfig()
	assert.Equal(t, 5, gc.MaxDepth)
	assert.True(t, gc.Writer.BatchWrites)
	assert.Equal(t, 3, gc.Writer.MaxAttempts)
	assert.Equal(t, 200*time.Millisecond, gc.Writer.RetryBackoff)

	sc := cfg.Storage.StoreConfig()
	assert.Equal(t, "tidemark.db", sc.Path)
}

func TestLogConfig_SlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, config.LogConfig{Level: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, config.LogConfig{Level: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelError, config.LogConfig{Level: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, config.LogConfig{Level: ""}.SlogLevel())
}

func TestDefaultConfigYAML_LoadsAndMatchesDefaults(t *testing.T) {
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(config.DefaultConfigYAML, &doc))
	assert.Contains(t, doc, "graph")

	cfgPath := filepath.Join(t.TempDir(), "tidemark.yaml")
	require.NoError(t, os.WriteFile(cfgPath, config.DefaultConfigYAML, 0o600))

	fromFile, err := config.Load(cfgPath)
	require.NoError(t, err)
	defaults, err := config.Load("")
	require.NoError(t, err)
	assert.Empty(t, fromFile.Networking.CORSOrigins)
	fromFile.Networking.CORSOrigins, defaults.Networking.CORSOrigins = nil, nil
	assert.Equal(t, defaults, fromFile)
}

func TestBootstrapConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tidemark.yaml")

	assert.Equal(t, path, config.BootstrapConfig(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.Empty(t, config.BootstrapConfig(path), "existing file is left alone")
}
