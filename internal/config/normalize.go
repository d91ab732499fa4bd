package config

import (
	"strings"

	"git.home.luguber.info/inful/docgen/internal/foundation"
)

var (
	modeNormalizer = foundation.NewNormalizer(map[string]Mode{
		"local":      ModeLocal,
		"filesystem": ModeLocal,
		"fs":         ModeLocal,
		"remote":     ModeRemote,
		"gcs":        ModeRemote,
		"cloud":      ModeRemote,
	}, "")
	levelNormalizer = foundation.NewNormalizer(map[string]string{
		"debug":   "debug",
		"info":    "info",
		"warn":    "warn",
		"warning": "warn",
		"error":   "error",
	}, "")
	formatNormalizer = foundation.NewNormalizer(map[string]string{
		"text":    "text",
		"console": "text",
		"json":    "json",
	}, "")
)

// NormalizeMode maps raw input to a Mode, accepting a few aliases. Unknown
// values return "".
func NormalizeMode(raw string) Mode {
	return modeNormalizer.Normalize(raw)
}

// normalizeConfig case-folds enumerations. Unknown values are left for the
// validator to report.
func normalizeConfig(cfg *Config) {
	if m := NormalizeMode(string(cfg.Mode)); m != "" {
		cfg.Mode = m
	}
	if l := levelNormalizer.Normalize(cfg.Logging.Level); l != "" {
		cfg.Logging.Level = l
	}
	if f := formatNormalizer.Normalize(cfg.Logging.Format); f != "" {
		cfg.Logging.Format = f
	}
	cfg.Versions.Sort = strings.ToLower(strings.TrimSpace(cfg.Versions.Sort))
	cfg.Version = strings.TrimPrefix(strings.TrimSpace(cfg.Version), "v")
}
