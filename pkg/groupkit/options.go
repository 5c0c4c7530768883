package groupkit

import (
	"os"

	"go.llib.dev/frameless/pkg/logging"
)

// Option configures a traversal built by Spec.Build or New.
type Option interface {
	Configure(*Config)
}

// OptionFunc is a default implementation for creating options.
type OptionFunc func(*Config)

func (fn OptionFunc) Configure(c *Config) { fn(c) }

// Config is the configuration of a traversal.
// A Config is an Option as well, so it can be passed as a whole to Build.
type Config struct {
	// Logger is used for the lifecycle logs of the traversal.
	// When nil, an info level logger writing to the standard error is used.
	Logger *logging.Logger
}

func (c Config) Configure(t *Config) {
	if c.Logger != nil {
		t.Logger = c.Logger
	}
}

// WithLogger sets the logger of the traversal lifecycle logs.
func WithLogger(l *logging.Logger) Option {
	return OptionFunc(func(c *Config) { c.Logger = l })
}

var defaultLogger = &logging.Logger{Out: os.Stderr, Level: logging.LevelInfo}

// GetLogger returns the configured logger, or the default one when Logger is nil.
func (c Config) GetLogger() *logging.Logger {
	if c.Logger == nil {
		return defaultLogger
	}
	return c.Logger
}

// ToConfig applies the options on an empty Config.
func ToConfig(opts []Option) Config {
	var c Config
	for _, opt := range opts {
		opt.Configure(&c)
	}
	return c
}

// CollectOption configures Collect and Root.List.
type CollectOption interface {
	ConfigureCollect(*CollectConfig)
}

// CollectOptionFunc is a default implementation for creating collect options.
type CollectOptionFunc func(*CollectConfig)

func (fn CollectOptionFunc) ConfigureCollect(c *CollectConfig) { fn(c) }

// CollectConfig is the configuration of Collect.
type CollectConfig struct {
	// FlattenLast makes Collect merge the fields of the last child into its parent Node,
	// at every level of the tree, including the leaf boundary.
	FlattenLast bool
}

func (c CollectConfig) ConfigureCollect(t *CollectConfig) {
	if c.FlattenLast {
		t.FlattenLast = true
	}
}

// FlattenLast enables CollectConfig.FlattenLast.
func FlattenLast() CollectOption {
	return CollectOptionFunc(func(c *CollectConfig) { c.FlattenLast = true })
}

func toCollectConfig(opts []CollectOption) CollectConfig {
	var c CollectConfig
	for _, opt := range opts {
		opt.ConfigureCollect(&c)
	}
	return c
}
