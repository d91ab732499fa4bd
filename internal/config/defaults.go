package config

import (
	"fmt"
	"time"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// CompositeDefaultApplier applies defaults across all configuration domains.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier creates a composite default applier with all domain appliers.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []DefaultApplier{
			&storageDefaults{},
			&sourceDefaults{},
			&notifyDefaults{},
			&versionsDefaults{},
			&loggingDefaults{},
			&daemonDefaults{},
		},
	}
}

// ApplyDefaults applies defaults for all configuration domains.
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, applier := range c.appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", applier.Domain(), err)
		}
	}
	return nil
}

const (
	DefaultOutputPath  = "./out"
	DefaultNATSSubject = "docgen.completed"
	DefaultListen      = "127.0.0.1:8090"
	DefaultDebounce    = 300 * time.Millisecond
	DefaultInterval    = time.Hour
	DefaultTimeout     = 30 * time.Second
)

type storageDefaults struct{}

func (storageDefaults) Domain() string { return "storage" }

func (storageDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Mode == "" {
		cfg.Mode = ModeLocal
	}
	if cfg.Mode == ModeLocal && cfg.Output.Path == "" {
		cfg.Output.Path = DefaultOutputPath
	}
	return nil
}

type sourceDefaults struct{}

func (sourceDefaults) Domain() string { return "source" }

func (sourceDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Source.Repository == "" {
		return nil
	}
	if cfg.Source.Path == "" {
		cfg.Source.Path = "."
	}
	if cfg.Source.Depth == 0 {
		cfg.Source.Depth = 1
	}
	return nil
}

type notifyDefaults struct{}

func (notifyDefaults) Domain() string { return "notify" }

func (notifyDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Notify.NATSURL != "" && cfg.Notify.NATSSubject == "" {
		cfg.Notify.NATSSubject = DefaultNATSSubject
	}
	if cfg.Notify.Timeout == 0 {
		cfg.Notify.Timeout = DefaultTimeout
	}
	return nil
}

type versionsDefaults struct{}

func (versionsDefaults) Domain() string { return "versions" }

func (versionsDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Versions.Sort == "" {
		cfg.Versions.Sort = "lexical"
	}
	return nil
}

type loggingDefaults struct{}

func (loggingDefaults) Domain() string { return "logging" }

func (loggingDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	return nil
}

type daemonDefaults struct{}

func (daemonDefaults) Domain() string { return "daemon" }

func (daemonDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Daemon.Listen == "" {
		cfg.Daemon.Listen = DefaultListen
	}
	if cfg.Daemon.Debounce == 0 {
		cfg.Daemon.Debounce = DefaultDebounce
	}
	if cfg.Daemon.Schedule == "" && cfg.Daemon.Interval == 0 {
		cfg.Daemon.Interval = DefaultInterval
	}
	return nil
}
