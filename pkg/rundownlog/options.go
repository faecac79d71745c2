package rundownlog

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/correlate"
	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/event"
)

// Option configures watcher behavior using the functional options pattern.
type Option func(*config)

// config holds internal configuration for the watcher.
type config struct {
	logDir       string
	pollInterval time.Duration
	logger       *slog.Logger
	correlator   correlate.Correlator
	patternFile  string
	overrides    map[string]string
	filter       *compiledFilter
}

// defaultConfig returns a config with sensible defaults.
func defaultConfig() *config {
	return &config{
		pollInterval: 2 * time.Second,
	}
}

// applyOptions applies functional options to a config.
func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// validate checks for invalid option combinations.
func (c *config) validate() error {
	if c.pollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.pollInterval)
	}
	if c.patternFile != "" && len(c.overrides) > 0 {
		return fmt.Errorf("pattern file and inline overrides are mutually exclusive")
	}
	return nil
}

// WithLogDir sets the game log directory.
// If not set, auto-detects from default install locations.
// Can also be set via the RUNDOWNLOG_LOGDIR environment variable.
func WithLogDir(dir string) Option {
	return func(c *config) {
		c.logDir = dir
	}
}

// WithPollInterval sets how often the log directory is rescanned for a
// newer log file. Default: 2 seconds.
func WithPollInterval(interval time.Duration) Option {
	return func(c *config) {
		c.pollInterval = interval
	}
}

// WithLogger sets a custom logger for debug output.
// If logger is nil, logging is disabled (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithCorrelator sets the strategy that pairs seeded-item announcements
// with their container pickups. If cor is nil, this option has no effect
// (the positional FIFO queue remains active).
func WithCorrelator(cor correlate.Correlator) Option {
	return func(c *config) {
		if cor != nil {
			c.correlator = cor
		}
	}
}

// WithPatternFile loads extraction-rule overrides from a YAML file.
// Mutually exclusive with WithPatternOverrides.
func WithPatternFile(path string) Option {
	return func(c *config) {
		c.patternFile = path
	}
}

// WithPatternOverrides replaces individual extraction rules by pattern id.
// Override regexes must keep the named capture groups the defaults define.
// Mutually exclusive with WithPatternFile.
func WithPatternOverrides(overrides map[string]string) Option {
	return func(c *config) {
		c.overrides = overrides
	}
}

// WithIncludeKinds filters events to only include the specified kinds.
// If called multiple times, only the last call takes effect.
func WithIncludeKinds(kinds ...event.Kind) Option {
	return func(c *config) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.include = make(map[event.Kind]struct{}, len(kinds))
		for _, k := range kinds {
			c.filter.include[k] = struct{}{}
		}
	}
}

// WithExcludeKinds filters out events of the specified kinds.
// Exclude takes precedence over include.
// If called multiple times, only the last call takes effect.
func WithExcludeKinds(kinds ...event.Kind) Option {
	return func(c *config) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.exclude = make(map[event.Kind]struct{}, len(kinds))
		for _, k := range kinds {
			c.filter.exclude[k] = struct{}{}
		}
	}
}

// WithFilter sets both include and exclude kind filters.
// Exclude takes precedence over include.
func WithFilter(include, exclude []event.Kind) Option {
	return func(c *config) {
		c.filter = newCompiledFilter(include, exclude)
	}
}
