package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	ferrors "git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

// Options configures a Daemon.
type Options struct {
	// Schedule is a cron expression; when empty Interval is used.
	Schedule string
	Interval time.Duration
	// Listen is the HTTP address; empty disables the server.
	Listen string
	// Registry is served on /metrics when set.
	Registry *prom.Registry
	// RunOnStart triggers a run as soon as the daemon starts.
	RunOnStart bool
}

// Daemon regenerates on a schedule and serves the HTTP endpoints.
type Daemon struct {
	runner *Runner
	opts   Options
	log    *slog.Logger
}

// New creates a daemon around runner.
func New(runner *Runner, opts Options, log *slog.Logger) *Daemon {
	if log == nil {
		log = slog.Default()
	}
	return &Daemon{runner: runner, opts: opts, log: log}
}

// Run blocks until ctx is done. An in-flight run is waited for before
// returning.
func (d *Daemon) Run(ctx context.Context) error {
	sched, err := NewScheduler()
	if err != nil {
		return ferrors.DaemonError("failed to create scheduler").WithCause(err).Build()
	}
	if _, err := sched.ScheduleRuns(ctx, d.runner, d.opts.Schedule, d.opts.Interval); err != nil {
		_ = sched.Stop()
		return ferrors.ConfigError("invalid daemon schedule").WithCause(err).
			WithContext("schedule", d.opts.Schedule).Build()
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			d.log.Warn("Failed to stop scheduler", slog.String("error", err.Error()))
		}
	}()

	if d.opts.RunOnStart {
		go d.runner.Request(ctx, "startup")
	}

	var serveErr error
	if d.opts.Listen != "" {
		serveErr = ListenAndServe(ctx, d.opts.Listen, NewServer(ctx, d.runner, d.opts.Registry, d.log))
	} else {
		<-ctx.Done()
	}

	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := d.runner.Wait(waitCtx); err != nil {
		d.log.Warn("Timed out waiting for in-flight generation")
	}
	if serveErr != nil {
		return ferrors.DaemonError("http server failed").WithCause(serveErr).
			WithContext("listen", d.opts.Listen).Build()
	}
	return nil
}

// Watch runs once, then again after every debounced change below root,
// until ctx is done.
func Watch(ctx context.Context, runner *Runner, root string, debounce time.Duration) error {
	w, err := NewWatcher(root, debounce)
	if err != nil {
		return ferrors.DaemonError("failed to start watcher").WithCause(err).Build()
	}
	runner.Request(ctx, "startup")

	if err := w.Run(ctx, func() { runner.Request(ctx, "watch") }); err != nil {
		return ferrors.DaemonError("source watcher failed").WithCause(err).
			WithContext("source", root).Build()
	}
	if err := runner.Wait(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("wait for generation: %w", err)
	}
	return nil
}
