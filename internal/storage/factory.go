package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/docgen/internal/config"
)

// ErrMissingConnectionString is returned by New in remote mode without a
// connection string.
var ErrMissingConnectionString = errors.New("remote mode requires remote.connection_string")

// New selects the destination store for cfg.Mode. Dry runs wrap the selected
// store so listings still reach the real destination.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Mode {
	case config.ModeLocal:
		st, err = NewLocalStore(cfg.Output.Path)
	case config.ModeRemote:
		if cfg.Remote.ConnectionString == "" {
			return nil, ErrMissingConnectionString
		}
		st, err = NewGCSStore(ctx, cfg.Remote.ConnectionString)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}
	if err != nil {
		return nil, err
	}
	if cfg.DryRun {
		return NewDryRunStore(st, logger), nil
	}
	return st, nil
}
