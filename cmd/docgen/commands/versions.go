package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docgen/internal/config"
	ferrors "git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/manifest"
	"git.home.luguber.info/inful/docgen/internal/versioning"
)

// VersionsCmd implements the 'versions' command.
type VersionsCmd struct {
	Output string `short:"o" help:"Output directory for local mode (overrides config)"`
	Mode   string `short:"m" help:"Storage mode: local or remote (overrides config)"`
}

func (v *VersionsCmd) Run(global *Global, root *CLI) error {
	cfg, err := loadConfig(root, config.Overrides{Output: v.Output, Mode: v.Mode})
	if err != nil {
		return err
	}
	ctx := context.Background()
	versions, err := ListVersions(ctx, cfg)
	if err != nil {
		return err
	}
	for _, name := range versions {
		_, _ = fmt.Fprintln(global.out(), name)
	}
	return nil
}

// ListVersions returns the published versions in index order.
func ListVersions(ctx context.Context, cfg *config.Config) ([]string, error) {
	order, err := versioning.ParseSortOrder(cfg.Versions.Sort)
	if err != nil {
		return nil, ferrors.ConfigError("invalid version sort order").
			WithCause(err).
			WithContext("sort", cfg.Versions.Sort).
			Build()
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	versions, err := manifest.NewEmitter(st, order).ListVersions(ctx)
	if err != nil {
		return nil, ferrors.StorageError("failed to list versions").WithCause(err).Build()
	}
	return versions, nil
}
