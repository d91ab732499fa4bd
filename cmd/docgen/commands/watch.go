package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/daemon"
	ferrors "git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/logfields"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Source string `short:"s" help:"Source directory (overrides config)"`
	Output string `short:"o" help:"Output directory for local mode (overrides config)"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root, config.Overrides{Source: w.Source, Output: w.Output})
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunWatch(ctx, cfg)
}

// RunWatch regenerates after every change below the source directory until
// ctx is done.
func RunWatch(ctx context.Context, cfg *config.Config) error {
	if cfg.Source.Repository != "" {
		return ferrors.ValidationError("watch mode needs a local source directory").
			WithContext("repository", cfg.Source.Repository).
			Build()
	}
	rt, err := newRuntime(ctx, cfg, "", false)
	if err != nil {
		return err
	}
	defer rt.Close()

	slog.Info("Watching source directory",
		logfields.Source(cfg.Source.Path),
		logfields.Version(cfg.Version))
	runner := daemon.NewRunner(rt.run)
	return daemon.Watch(ctx, runner, cfg.Source.Path, cfg.Daemon.Debounce)
}
