package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/daemon"
	"git.home.luguber.info/inful/docgen/internal/logfields"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	Listen       string `short:"l" help:"HTTP listen address (overrides config)"`
	Schedule     string `help:"Cron expression for scheduled runs (overrides config)"`
	NoInitialRun bool   `name:"no-initial-run" help:"Wait for the first scheduled run instead of generating at startup"`
}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root, config.Overrides{})
	if err != nil {
		return err
	}
	if d.Listen != "" {
		cfg.Daemon.Listen = d.Listen
	}
	if d.Schedule != "" {
		cfg.Daemon.Schedule = d.Schedule
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunDaemon(ctx, cfg, !d.NoInitialRun)
}

// RunDaemon serves scheduled regeneration until ctx is done.
func RunDaemon(ctx context.Context, cfg *config.Config, runOnStart bool) error {
	rt, err := newRuntime(ctx, cfg, "", true)
	if err != nil {
		return err
	}
	defer rt.Close()

	slog.Info("Starting daemon mode",
		logfields.Version(cfg.Version),
		logfields.Schedule(cfg.Daemon.Schedule),
		slog.String("listen", cfg.Daemon.Listen))

	runner := daemon.NewRunner(rt.run)
	d := daemon.New(runner, daemon.Options{
		Schedule:   cfg.Daemon.Schedule,
		Interval:   cfg.Daemon.Interval,
		Listen:     cfg.Daemon.Listen,
		Registry:   rt.registry,
		RunOnStart: runOnStart,
	}, slog.Default())
	if err := d.Run(ctx); err != nil {
		return err
	}
	slog.Info("Daemon stopped successfully")
	return nil
}
