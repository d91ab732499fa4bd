package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docgen/internal/config"
	ferrors "git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/generator"
	"git.home.luguber.info/inful/docgen/internal/history"
	"git.home.luguber.info/inful/docgen/internal/logfields"
	"git.home.luguber.info/inful/docgen/internal/metrics"
	"git.home.luguber.info/inful/docgen/internal/observability"
	"git.home.luguber.info/inful/docgen/internal/storage"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	// Out receives user-facing output; nil means stdout.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docgen.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate GenerateCmd `cmd:"" help:"Build the documentation tree and publish it to the configured store"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
	Versions VersionsCmd `cmd:"" help:"List the versions currently published in the store"`
	Watch    WatchCmd    `cmd:"" help:"Regenerate whenever the source directory changes"`
	Daemon   DaemonCmd   `cmd:"" help:"Regenerate on a schedule and serve health, status and metrics"`
	History  HistoryCmd  `cmd:"" help:"Show recent generation runs"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := "info"
	if c.Verbose {
		level = "debug"
	}
	slog.SetDefault(observability.NewLogger(os.Stderr, level, "text"))
	return nil
}

// loadConfig reads the configuration and switches logging to its settings.
func loadConfig(root *CLI, ov config.Overrides) (*config.Config, error) {
	cfg, err := config.LoadWithOverrides(root.Config, ov)
	if err != nil {
		return nil, ferrors.ConfigError("failed to load configuration").
			WithCause(err).
			WithContext("path", root.Config).
			Build()
	}
	level := cfg.Logging.Level
	if root.Verbose {
		level = "debug"
	}
	slog.SetDefault(observability.NewLogger(os.Stderr, level, cfg.Logging.Format))
	return cfg, nil
}

// openStore selects the destination store for cfg.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	st, err := storage.New(ctx, cfg, slog.Default())
	if err == nil {
		return st, nil
	}
	if errors.Is(err, storage.ErrMissingConnectionString) || errors.Is(err, storage.ErrUnknownMode) {
		return nil, ferrors.ConfigError("invalid storage configuration").
			WithCause(err).
			WithContext("mode", string(cfg.Mode)).
			Build()
	}
	return nil, ferrors.StorageError("failed to open destination store").
		WithCause(err).
		WithContext("mode", string(cfg.Mode)).
		Build()
}

// openHistory opens the run ledger, or returns nil when none is configured.
func openHistory(cfg *config.Config) (*history.SQLiteStore, error) {
	if cfg.History.Path == "" {
		return nil, nil
	}
	h, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return nil, ferrors.StorageError("failed to open run history").
			WithCause(err).
			WithContext("path", cfg.History.Path).
			Build()
	}
	return h, nil
}

// runtime holds the collaborators shared by every run of one command.
type runtime struct {
	cfg      *config.Config
	store    storage.Store
	history  *history.SQLiteStore
	registry *prom.Registry
	textfile string
}

// newRuntime opens the store and history for cfg. A registry is created when
// withRegistry is set or a metrics textfile is configured.
func newRuntime(ctx context.Context, cfg *config.Config, textfile string, withRegistry bool) (*runtime, error) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	h, err := openHistory(cfg)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, store: st, history: h, textfile: textfile}
	if rt.textfile == "" {
		rt.textfile = cfg.Metrics.Textfile
	}
	if withRegistry || rt.textfile != "" {
		rt.registry = prom.NewRegistry()
	}
	return rt, nil
}

func (rt *runtime) generator() *generator.Generator {
	g := generator.New(rt.cfg, rt.store)
	if rt.registry != nil {
		g.WithRecorder(metrics.NewPrometheusRecorder(rt.registry))
	}
	if rt.history != nil {
		g.WithHistory(rt.history)
	}
	return g
}

// run executes one generation and exports metrics afterwards.
func (rt *runtime) run(ctx context.Context) (*generator.Report, error) {
	report, err := rt.generator().Generate(ctx)
	if werr := metrics.WriteTextfile(rt.textfile, rt.registry); werr != nil {
		slog.Warn("Failed to write metrics textfile",
			logfields.Path(rt.textfile),
			logfields.Error(werr))
	}
	return report, err
}

func (rt *runtime) Close() {
	if rt.history == nil {
		return
	}
	if err := rt.history.Close(); err != nil {
		slog.Warn("Failed to close run history", logfields.Error(err))
	}
}
