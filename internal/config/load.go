package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "docgen.yaml"

// ErrNotFound is returned when the configuration file does not exist.
var ErrNotFound = errors.New("configuration file not found")

// Load reads configPath, its local overlay and .env files, then normalizes,
// defaults and validates the result.
func Load(configPath string) (*Config, error) {
	return LoadWithOverrides(configPath, Overrides{})
}

// LoadWithOverrides is Load with command-line values applied before defaults
// and validation.
func LoadWithOverrides(configPath string, ov Overrides) (*Config, error) {
	if err := loadEnvFiles(filepath.Dir(configPath)); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := decodeFile(configPath, cfg, true); err != nil {
		return nil, err
	}
	if err := decodeFile(LocalOverlayPath(configPath), cfg, false); err != nil {
		return nil, err
	}

	ov.apply(cfg)
	normalizeConfig(cfg)
	if err := NewDefaultApplier().ApplyDefaults(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LocalOverlayPath returns the overlay file for configPath, e.g.
// docgen.local.yaml for docgen.yaml.
func LocalOverlayPath(configPath string) string {
	ext := filepath.Ext(configPath)
	return strings.TrimSuffix(configPath, ext) + ".local" + ext
}

func decodeFile(path string, cfg *Config, required bool) error {
	// #nosec G304 -- configuration path is chosen by the operator
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if required {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	dec := yaml.NewDecoder(strings.NewReader(os.ExpandEnv(string(data))))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (ov Overrides) apply(cfg *Config) {
	if ov.Version != "" {
		cfg.Version = ov.Version
	}
	if ov.Source != "" {
		cfg.Source.Path = ov.Source
	}
	if ov.Output != "" {
		cfg.Output.Path = ov.Output
	}
	if ov.Mode != "" {
		cfg.Mode = Mode(ov.Mode)
	}
	if ov.Clean != nil {
		cfg.Output.Clean = *ov.Clean
	}
	if ov.DryRun {
		cfg.DryRun = true
	}
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Mode:    ModeLocal,
		Version: "1.0.0",
		Source: SourceConfig{
			Path: "./docs",
		},
		Output: OutputConfig{
			Path:  DefaultOutputPath,
			Clean: true,
		},
		Remote: RemoteConfig{
			ConnectionString: "${DOCGEN_REMOTE_CONNECTION}",
		},
		Versions: VersionsConfig{Sort: "lexical"},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Daemon: DaemonConfig{
			Schedule: "0 */4 * * *",
			Listen:   DefaultListen,
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}
	header := "# docgen configuration\n# Values may reference environment variables as ${VAR}; .env files next to\n# this file are loaded first. docgen.local.yaml, if present, overrides this file.\n"
	// #nosec G306 -- configuration contains no secrets by default
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
