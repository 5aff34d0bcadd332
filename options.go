package gradle

import (
	"context"
	"errors"
	"log/slog"

	"github.com/snapsam/gradle/lockfile"
	"github.com/snapsam/gradle/module"
)

const (
	defaultMaxConcurrency = 5
	defaultCacheSize      = 512
)

// Option configures resolution behavior.
type Option func(*config) error

// config holds all resolution configuration.
type config struct {
	usages          []string
	bomSupport      bool
	moduleMetadata  bool
	artifactOnly    bool
	maxConcurrency  int
	cacheSize       int
	constraints     []module.Constraint
	locks           *lockfile.Lockfile
	failOnLockDrift bool

	// logger is the structured logger for debug/info output.
	// If nil, logging is disabled (silent mode).
	logger *slog.Logger
}

// DefaultOptions returns the options most callers want: BOM and
// optional-dependency support, native module metadata consumption, and both
// usages selected.
func DefaultOptions() []Option {
	return []Option{
		WithBOMSupport(true),
		WithModuleMetadata(true),
		WithUsages(UsageRuntime, UsageAPI),
	}
}

// Usage names understood by the variant selector.
const (
	// UsageAPI selects compile-time consumption.
	UsageAPI = "api"

	// UsageRuntime selects execution-time consumption.
	UsageRuntime = "runtime"
)

// WithUsages sets the usages to compute artifact sets for. The first usage
// drives graph traversal when variants declare differing dependency
// subsets. Defaults to runtime only.
func WithUsages(usages ...string) Option {
	return func(c *config) error {
		c.usages = append(c.usages, usages...)
		return nil
	}
}

// WithBOMSupport enables bill-of-materials import expansion and
// optional-dependency-to-constraint conversion.
func WithBOMSupport(enabled bool) Option {
	return func(c *config) error {
		c.bomSupport = enabled
		return nil
	}
}

// WithModuleMetadata enables consumption of the native module metadata
// format where repositories serve it.
func WithModuleMetadata(enabled bool) Option {
	return func(c *config) error {
		c.moduleMetadata = enabled
		return nil
	}
}

// WithArtifactOnlyFallback treats modules without any descriptor as
// zero-dependency modules backed by a single artifact, for repositories
// that advertise the artifact-only capability.
func WithArtifactOnlyFallback(enabled bool) Option {
	return func(c *config) error {
		c.artifactOnly = enabled
		return nil
	}
}

// WithConstraints records root-declared dependency constraints.
func WithConstraints(constraints ...module.Constraint) Option {
	return func(c *config) error {
		c.constraints = append(c.constraints, constraints...)
		return nil
	}
}

// WithMaxConcurrency bounds the number of concurrent metadata fetches.
func WithMaxConcurrency(n int) Option {
	return func(c *config) error {
		c.maxConcurrency = n
		return nil
	}
}

// WithCacheSize bounds the parsed-descriptor cache (entries).
func WithCacheSize(n int) Option {
	return func(c *config) error {
		c.cacheSize = n
		return nil
	}
}

// WithLockfile pins previously locked versions: every lock entry acts as a
// strict constraint for its module.
func WithLockfile(lf *lockfile.Lockfile) Option {
	return func(c *config) error {
		c.locks = lf
		return nil
	}
}

// WithFailOnLockDrift makes Resolve return an error when the resolved graph
// does not exactly match the configured lockfile. Without it, drift only
// surfaces through conflicts against the lockfile's strict constraints.
func WithFailOnLockDrift(enabled bool) Option {
	return func(c *config) error {
		c.failOnLockDrift = enabled
		return nil
	}
}

// WithLogger sets a structured logger for resolution diagnostics.
// If not set, logging is disabled (silent mode).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) error {
		c.logger = l
		return nil
	}
}

// validate checks the configuration for logical consistency.
func (c *config) validate() error {
	if c.maxConcurrency < 0 {
		return errors.New("max concurrency must be positive")
	}
	if c.cacheSize < 0 {
		return errors.New("cache size must be positive")
	}
	for _, u := range c.usages {
		if u == "" {
			return errors.New("empty usage")
		}
	}
	return nil
}

// primaryUsage returns the usage that drives graph traversal.
func (c *config) primaryUsage() string {
	return c.usages[0]
}

// log returns the configured logger, or a no-op logger if none was set.
// Libraries should be silent by default; users opt in via WithLogger.
func (c *config) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(discardHandler{})
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// newConfig applies options and validates the result.
func newConfig(opts ...Option) (*config, error) {
	c := &config{
		maxConcurrency: defaultMaxConcurrency,
		cacheSize:      defaultCacheSize,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if len(c.usages) == 0 {
		c.usages = []string{UsageRuntime}
	}
	if c.maxConcurrency == 0 {
		c.maxConcurrency = defaultMaxConcurrency
	}
	if c.cacheSize == 0 {
		c.cacheSize = defaultCacheSize
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}
