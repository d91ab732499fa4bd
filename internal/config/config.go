// Package config loads and validates docgen settings.
//
// Settings come from a YAML file (docgen.yaml), an optional sibling overlay
// (docgen.local.yaml), environment variables referenced as ${VAR} and loaded
// from .env files, and finally command-line overrides.
package config

import "time"

// Mode selects the destination store.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// Config is the complete docgen configuration.
type Config struct {
	Mode     Mode           `yaml:"mode" validate:"required,oneof=local remote"`
	Version  string         `yaml:"version" validate:"required,version"`
	Source   SourceConfig   `yaml:"source"`
	Output   OutputConfig   `yaml:"output"`
	Remote   RemoteConfig   `yaml:"remote"`
	Notify   NotifyConfig   `yaml:"notify"`
	Versions VersionsConfig `yaml:"versions"`
	History  HistoryConfig  `yaml:"history"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
	Daemon   DaemonConfig   `yaml:"daemon"`

	// DryRun is set from the command line only.
	DryRun bool `yaml:"-"`
}

// SourceConfig locates the authoring tree. When Repository is set the tree
// is checked out first and Path is relative to the checkout.
type SourceConfig struct {
	Path       string `yaml:"path"`
	Repository string `yaml:"repository,omitempty"`
	Ref        string `yaml:"ref,omitempty"`
	Depth      int    `yaml:"depth,omitempty" validate:"gte=0"`
}

// OutputConfig configures the local destination and cleaning.
type OutputConfig struct {
	Path  string `yaml:"path"`
	Clean bool   `yaml:"clean"`
}

// RemoteConfig configures the remote object store.
type RemoteConfig struct {
	ConnectionString string `yaml:"connection_string,omitempty"`
}

// NotifyConfig configures completion notifications.
type NotifyConfig struct {
	WebhookURL  string        `yaml:"webhook_url,omitempty" validate:"omitempty,url"`
	Timeout     time.Duration `yaml:"timeout,omitempty" validate:"gte=0"`
	NATSURL     string        `yaml:"nats_url,omitempty" validate:"omitempty,url"`
	NATSSubject string        `yaml:"nats_subject,omitempty"`
}

// VersionsConfig configures the version index.
type VersionsConfig struct {
	Sort string `yaml:"sort" validate:"oneof=lexical semantic"`
}

// HistoryConfig configures the run ledger. An empty path disables it.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// MetricsConfig configures metrics export. An empty textfile disables it.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// DaemonConfig configures the watch and daemon commands.
type DaemonConfig struct {
	Schedule string        `yaml:"schedule,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty" validate:"gte=0"`
	Listen   string        `yaml:"listen,omitempty" validate:"omitempty,hostname_port"`
	Debounce time.Duration `yaml:"debounce,omitempty" validate:"gte=0"`
}

// Overrides are command-line values that take precedence over files.
type Overrides struct {
	Version string
	Source  string
	Output  string
	Mode    string
	Clean   *bool
	DryRun  bool
}
