// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package config

import (
	"errors"
	"log/slog"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tidemark-dev/tidemark/internal/graph"
	"github.com/tidemark-dev/tidemark/internal/store"
	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// Config is the top-level Tidemark configuration.
type Config struct {
	Networking NetworkingConfig `mapstructure:"networking"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Graph      GraphConfig      `mapstructure:"graph"`
	Log        LogConfig        `mapstructure:"log"`
}

// NetworkingConfig controls how the REST server listens.
type NetworkingConfig struct {
	Listen      string          `mapstructure:"listen"`
	CORSOrigins []string        `mapstructure:"cors_origins"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig limits requests per client IP. A zero rate disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// StorageConfig selects the relational metadata store.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// GraphConfig selects and tunes the graph store.
type GraphConfig struct {
	Backend     string        `mapstructure:"backend"`
	URL         string        `mapstructure:"url"`
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Engine      string        `mapstructure:"engine"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxDepth    int           `mapstructure:"max_depth"`
	BatchWrites bool          `mapstructure:"batch_writes"`
	Link        LinkConfig    `mapstructure:"link"`
}

// LinkConfig bounds link retries.
type LinkConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var (
	storageBackends = []string{"sqlite"}
	graphBackends   = []string{"cayley", "memory"}
	graphEngines    = []string{"gizmo"}
	logLevels       = []string{"debug", "info", "warn", "error"}
	logFormats      = []string{"text", "json"}
)

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("networking.listen", "127.0.0.1:5000")
	v.SetDefault("networking.cors_origins", []string{})
	v.SetDefault("networking.rate_limit.requests_per_second", 0)
	v.SetDefault("networking.rate_limit.burst", 0)
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.path", "tidemark.db")
	v.SetDefault("graph.backend", "cayley")
	v.SetDefault("graph.url", "")
	v.SetDefault("graph.host", "localhost")
	v.SetDefault("graph.port", 64210)
	v.SetDefault("graph.engine", "gizmo")
	v.SetDefault("graph.timeout", "10s")
	v.SetDefault("graph.max_depth", graph.DefaultMaxDepth)
	v.SetDefault("graph.batch_writes", false)
	v.SetDefault("graph.link.max_attempts", 1)
	v.SetDefault("graph.link.retry_backoff", "200ms")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// SetupEnv maps TIDEMARK_SECTION_KEY environment variables onto keys.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("TIDEMARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix TIDEMARK_).
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, tmerr.Errorf(tmerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, tmerr.Errorf(tmerr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, tmerr.Errorf(tmerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateNetworking()...)
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateGraph()...)
	errs = append(errs, c.validateLog()...)

	return errs
}

func invalid(format string, args ...any) error {
	return tmerr.Errorf(tmerr.CodeConfigValidateInvalidValue, "config: "+format, args...)
}

func oneOf(key, got string, allowed []string) error {
	if slices.Contains(allowed, got) {
		return nil
	}
	return invalid("%s must be one of [%s], got %q", key, strings.Join(allowed, ", "), got)
}

func (c *Config) validateNetworking() []error {
	var errs []error

	if c.Networking.Listen == "" {
		errs = append(errs, invalid("networking.listen must not be empty"))
	} else if err := validListen(c.Networking.Listen); err != nil {
		errs = append(errs, err)
	}

	rl := c.Networking.RateLimit
	if rl.RequestsPerSecond < 0 {
		errs = append(errs, invalid("networking.rate_limit.requests_per_second must not be negative, got %g", rl.RequestsPerSecond))
	}
	if rl.RequestsPerSecond > 0 && rl.Burst <= 0 {
		errs = append(errs, invalid("networking.rate_limit.burst must be positive when a rate is set, got %d", rl.Burst))
	}

	return errs
}

func validListen(addr string) error {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		// host can be empty (e.g., ":8080"), which is valid
		return invalid("networking.listen must be a valid host:port address, got %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return invalid("networking.listen port must be a number, got %q", portStr)
	}
	if port < 1 || port > 65535 {
		return invalid("networking.listen port must be between 1 and 65535, got %d", port)
	}
	return nil
}

func (c *Config) validateStorage() []error {
	var errs []error

	if err := oneOf("storage.backend", c.Storage.Backend, storageBackends); err != nil {
		errs = append(errs, err)
	}
	if c.Storage.Path == "" {
		errs = append(errs, invalid("storage.path must not be empty"))
	}

	return errs
}

func (c *Config) validateGraph() []error {
	var errs []error
	g := c.Graph

	if err := oneOf("graph.backend", g.Backend, graphBackends); err != nil {
		errs = append(errs, err)
	}
	if err := oneOf("graph.engine", g.Engine, graphEngines); err != nil {
		errs = append(errs, err)
	}

	if g.URL != "" {
		u, err := url.Parse(g.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, invalid("graph.url must be an absolute http(s) URL, got %q", g.URL))
		}
	} else if g.Port < 1 || g.Port > 65535 {
		errs = append(errs, invalid("graph.port must be between 1 and 65535, got %d", g.Port))
	}

	if g.Timeout < 0 {
		errs = append(errs, invalid("graph.timeout must not be negative, got %s", g.Timeout))
	}
	if g.MaxDepth < 1 {
		errs = append(errs, invalid("graph.max_depth must be at least 1, got %d", g.MaxDepth))
	}
	if g.Link.MaxAttempts < 1 {
		errs = append(errs, invalid("graph.link.max_attempts must be at least 1, got %d", g.Link.MaxAttempts))
	}
	if g.Link.RetryBackoff < 0 {
		errs = append(errs, invalid("graph.link.retry_backoff must not be negative, got %s", g.Link.RetryBackoff))
	}

	return errs
}

func (c *Config) validateLog() []error {
	var errs []error

	if err := oneOf("log.level", c.Log.Level, logLevels); err != nil {
		errs = append(errs, err)
	}
	if err := oneOf("log.format", c.Log.Format, logFormats); err != nil {
		errs = append(errs, err)
	}

	return errs
}

// BackendConfig returns the graph store backend settings.
func (g GraphConfig) BackendConfig() graph.BackendConfig {
	return graph.BackendConfig{
		Backend: g.Backend,
		URL:     g.URL,
		Host:    g.Host,
		Port:    g.Port,
		Engine:  g.Engine,
		Timeout: g.Timeout,
	}
}

// GatewayConfig returns the traversal and link settings.
func (g GraphConfig) GatewayConfig() graph.Config {
	return graph.Config{
		MaxDepth: g.MaxDepth,
		Writer: graph.WriterConfig{
			BatchWrites:  g.BatchWrites,
			MaxAttempts:  g.Link.MaxAttempts,
			RetryBackoff: g.Link.RetryBackoff,
		},
	}
}

// StoreConfig returns the metadata store settings.
func (s StorageConfig) StoreConfig() store.StorageConfig {
	return store.StorageConfig{Backend: s.Backend, Path: s.Path}
}

// SlogLevel parses Level. Unknown values map to Info.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
