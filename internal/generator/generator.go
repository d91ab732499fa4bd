package generator

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docgen/internal/config"
	ferrors "git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/git"
	"git.home.luguber.info/inful/docgen/internal/history"
	"git.home.luguber.info/inful/docgen/internal/logfields"
	"git.home.luguber.info/inful/docgen/internal/manifest"
	"git.home.luguber.info/inful/docgen/internal/metrics"
	"git.home.luguber.info/inful/docgen/internal/notify"
	"git.home.luguber.info/inful/docgen/internal/observability"
	"git.home.luguber.info/inful/docgen/internal/storage"
	"git.home.luguber.info/inful/docgen/internal/tree"
	terrors "git.home.luguber.info/inful/docgen/internal/tree/errors"
	"git.home.luguber.info/inful/docgen/internal/versioning"
	"git.home.luguber.info/inful/docgen/internal/workspace"
)

// NotifierFactory builds the notifiers of one run around the run's HTTP client.
type NotifierFactory func(client *http.Client) []notify.Notifier

// Generator executes generation runs against one store.
type Generator struct {
	cfg              *config.Config
	store            storage.Store
	source           tree.Source
	recorder         metrics.Recorder
	history          history.Store
	notifiers        NotifierFactory
	gitClient        *git.Client
	workspaceFactory func() *workspace.Manager
	clock            func() time.Time
	newRunID         func() string
}

// New creates a Generator for cfg publishing to store.
func New(cfg *config.Config, store storage.Store) *Generator {
	g := &Generator{
		cfg:      cfg,
		store:    store,
		source:   tree.OSSource{},
		recorder: metrics.NoopRecorder{},
		clock:    time.Now,
		newRunID: uuid.NewString,
	}
	g.gitClient = git.NewClient(cfg.Source.Depth, nil)
	g.workspaceFactory = func() *workspace.Manager {
		return workspace.NewManager("", nil)
	}
	g.notifiers = func(client *http.Client) []notify.Notifier {
		return notify.FromConfig(cfg.Notify, client)
	}
	return g
}

// WithRecorder sets the metrics recorder.
func (g *Generator) WithRecorder(r metrics.Recorder) *Generator {
	if r != nil {
		g.recorder = r
	}
	return g
}

// WithHistory records every run in h.
func (g *Generator) WithHistory(h history.Store) *Generator {
	g.history = h
	return g
}

// WithNotifierFactory replaces the notifiers built from configuration.
func (g *Generator) WithNotifierFactory(f NotifierFactory) *Generator {
	g.notifiers = f
	return g
}

// WithGitClient sets the client used for repository sources.
func (g *Generator) WithGitClient(c *git.Client) *Generator {
	g.gitClient = c
	return g
}

// WithWorkspaceFactory allows injecting a custom workspace factory (for testing).
func (g *Generator) WithWorkspaceFactory(f func() *workspace.Manager) *Generator {
	g.workspaceFactory = f
	return g
}

// WithClock sets the clock used for timestamps.
func (g *Generator) WithClock(clock func() time.Time) *Generator {
	g.clock = clock
	return g
}

// WithRunIDs sets the run id generator.
func (g *Generator) WithRunIDs(f func() string) *Generator {
	g.newRunID = f
	return g
}

// Generate executes one run. The destination is only touched once the tree
// has been built successfully.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	start := g.clock()
	report := &Report{
		RunID:     g.newRunID(),
		Version:   g.cfg.Version,
		StartTime: start,
		DryRun:    g.cfg.DryRun,
	}
	ctx = observability.WithRunID(ctx, report.RunID)
	ctx = observability.WithVersion(ctx, report.Version)
	observability.InfoContext(ctx, "Starting generation",
		logfields.Mode(string(g.cfg.Mode)),
		logfields.Destination(g.store.Describe()),
		slog.Bool("dry_run", g.cfg.DryRun))

	err := g.run(ctx, report)
	g.finish(ctx, report, err)
	return report, err
}

func (g *Generator) run(ctx context.Context, report *Report) error {
	sourceRoot, cleanup, err := g.resolveSource(ctx, report)
	if err != nil {
		return err
	}
	defer cleanup()
	report.Source = sourceRoot

	res, err := g.build(ctx, sourceRoot)
	if err != nil {
		return err
	}
	report.Root, report.Plan, report.Stats = res.Root, res.Plan, res.Stats

	if err := g.prepare(ctx); err != nil {
		return err
	}
	if err := g.apply(ctx, res.Plan); err != nil {
		return err
	}
	versions, err := g.writeManifests(ctx, res.Root)
	if err != nil {
		return err
	}
	report.Versions = versions

	report.NotifyErrors = g.notify(ctx, report)
	return nil
}

// resolveSource returns the local source root, checking out the configured
// repository into a workspace first when needed.
func (g *Generator) resolveSource(ctx context.Context, report *Report) (string, func(), error) {
	src := g.cfg.Source
	if src.Repository == "" {
		return src.Path, func() {}, nil
	}

	stageStart := time.Now()
	ctx = observability.WithStage(ctx, "checkout")
	ws := g.workspaceFactory()
	if err := ws.Create(); err != nil {
		return "", nil, ferrors.FileSystemError("failed to create workspace").WithCause(err).Build()
	}
	cleanup := func() {
		if err := ws.Cleanup(); err != nil {
			observability.WarnContext(ctx, "Failed to cleanup workspace", logfields.Error(err))
		}
	}
	dir, err := ws.Subdir("source")
	if err != nil {
		cleanup()
		return "", nil, ferrors.InternalError("workspace unavailable").WithCause(err).Build()
	}

	ref := src.Ref
	if ref == "" {
		ref = git.DefaultRef(g.cfg.Version)
	}
	co, err := g.gitClient.Checkout(ctx, src.Repository, ref, dir)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	report.Commit = co.Commit
	g.recorder.ObserveStageDuration("checkout", time.Since(stageStart))
	return filepath.Join(co.Path, filepath.FromSlash(src.Path)), cleanup, nil
}

func (g *Generator) build(ctx context.Context, sourceRoot string) (*tree.Result, error) {
	stageStart := time.Now()
	ctx = observability.WithStage(ctx, "build")
	observability.DebugContext(ctx, "Building documentation tree", logfields.Source(sourceRoot))

	builder := tree.NewBuilder(g.source, tree.WithClock(g.clock))
	res, err := builder.Build(ctx, sourceRoot, g.cfg.Version)
	if err != nil {
		return nil, classifyBuildError(err, sourceRoot)
	}
	g.recorder.ObserveStageDuration("build", time.Since(stageStart))
	observability.InfoContext(ctx, "Documentation tree built",
		logfields.Nodes(res.Root.Count()),
		logfields.Files(res.Stats.Files()),
		slog.Int("redirects", res.Stats.RedirectNodes+res.Stats.DirectoryRedirects),
		slog.Int("pruned", res.Stats.PrunedDirectories))
	return res, nil
}

func classifyBuildError(err error, sourceRoot string) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, terrors.ErrSourceRead):
		return ferrors.DocsError("failed to read source tree").WithCause(err).WithContext("source", sourceRoot).Build()
	case errors.Is(err, terrors.ErrControlFile):
		return ferrors.DocsError("invalid control file").WithCause(err).WithContext("source", sourceRoot).Build()
	default:
		return ferrors.BuildError("failed to build documentation tree").WithCause(err).WithContext("source", sourceRoot).Build()
	}
}

// prepare ensures the version and static roots exist and clears them when
// configured to.
func (g *Generator) prepare(ctx context.Context) error {
	ctx = observability.WithStage(ctx, "prepare")
	versionDir := g.cfg.Version
	staticDir := tree.StaticDir(g.cfg.Version)

	for _, dir := range []string{versionDir, staticDir} {
		if err := g.store.EnsureDir(ctx, dir); err != nil {
			return storageError("failed to create destination directory", dir, err)
		}
	}
	if !g.cfg.Output.Clean {
		return nil
	}
	for _, dir := range []string{versionDir, staticDir} {
		observability.InfoContext(ctx, "Clearing destination directory", logfields.Destination(dir))
		if err := g.store.ClearDir(ctx, dir); err != nil {
			return storageError("failed to clear destination directory", dir, err)
		}
	}
	return nil
}

// apply executes the build plan in order.
func (g *Generator) apply(ctx context.Context, plan tree.Plan) error {
	stageStart := time.Now()
	ctx = observability.WithStage(ctx, "publish")
	copied := map[tree.FileClass]int{}

	for _, op := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch op.Kind {
		case tree.OpEnsureDir:
			if err := g.store.EnsureDir(ctx, op.Dest); err != nil {
				return storageError("failed to create destination directory", op.Dest, err)
			}
		case tree.OpCopy:
			if err := g.store.CopyFile(ctx, op.Source, op.Dest); err != nil {
				return storageError("failed to copy file", op.Dest, err)
			}
			copied[op.Class]++
		default:
			return ferrors.InternalError("unknown plan operation").WithContext("op", string(op.Kind)).Build()
		}
	}
	for class, n := range copied {
		g.recorder.AddFiles(string(class), n)
	}
	g.recorder.ObserveStageDuration("publish", time.Since(stageStart))
	observability.InfoContext(ctx, "Published files",
		logfields.Files(plan.Copies()),
		logfields.Destination(g.store.Describe()))
	return nil
}

func (g *Generator) writeManifests(ctx context.Context, root *tree.Node) ([]string, error) {
	stageStart := time.Now()
	ctx = observability.WithStage(ctx, "manifest")

	order, err := versioning.ParseSortOrder(g.cfg.Versions.Sort)
	if err != nil {
		return nil, ferrors.ConfigError("invalid versions.sort").WithCause(err).Build()
	}
	emitter := manifest.NewEmitter(g.store, order)
	if err := emitter.WriteTableOfContents(ctx, root); err != nil {
		return nil, storageError("failed to write table of contents", manifest.TableOfContentsPath(root), err)
	}
	versions, err := emitter.UpdateVersionIndex(ctx)
	if err != nil {
		return nil, storageError("failed to update version index", manifest.VersionIndexFile, err)
	}
	g.recorder.ObserveStageDuration("manifest", time.Since(stageStart))
	return versions, nil
}

// notify signals completion. Failures are logged and returned, never fatal.
func (g *Generator) notify(ctx context.Context, report *Report) []error {
	if g.notifiers == nil {
		return nil
	}
	ctx = observability.WithStage(ctx, "notify")

	client := notify.NewHTTPClient(g.cfg.Notify.Timeout)
	defer client.CloseIdleConnections()

	ev := notify.Event{
		RunID:       report.RunID,
		Version:     report.Version,
		CompletedAt: g.clock().UTC(),
		Nodes:       report.Nodes(),
		Files:       report.Stats.Files(),
		Versions:    report.Versions,
	}
	var errs []error
	for _, n := range g.notifiers(client) {
		err := n.Notify(ctx, ev)
		g.recorder.IncNotifyResult(n.Name(), err == nil)
		if err != nil {
			observability.WarnContext(ctx, "Completion notification failed",
				slog.String("notifier", n.Name()), logfields.Error(err))
			errs = append(errs, ferrors.NotifyError("completion notification failed").
				WithCause(err).WithContext("notifier", n.Name()).Build())
			continue
		}
		observability.DebugContext(ctx, "Completion notification sent", slog.String("notifier", n.Name()))
	}
	return errs
}

func (g *Generator) finish(ctx context.Context, report *Report, err error) {
	report.EndTime = g.clock()
	report.Duration = report.EndTime.Sub(report.StartTime)

	switch {
	case err == nil:
		report.Status = StatusSuccess
		g.recorder.IncRunOutcome(metrics.OutcomeSuccess)
		g.recorder.SetTreeNodes(report.Version, report.Nodes())
		if !report.DryRun {
			g.recorder.SetLastSuccess(report.Version, report.EndTime)
		}
		observability.InfoContext(ctx, "Generation completed",
			logfields.Nodes(report.Nodes()),
			logfields.Files(report.Stats.Files()),
			logfields.DurationMS(float64(report.Duration.Milliseconds())))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		report.Status = StatusCanceled
		g.recorder.IncRunOutcome(metrics.OutcomeCanceled)
		observability.WarnContext(ctx, "Generation canceled", logfields.Error(err))
	default:
		report.Status = StatusFailed
		g.recorder.IncRunOutcome(metrics.OutcomeFailed)
		observability.ErrorContext(ctx, "Generation failed", logfields.Error(err))
	}
	g.recorder.ObserveRunDuration(report.Duration)
	g.record(ctx, report, err)
}

// record writes the run to the history ledger. The ledger outlives
// cancellation of the run itself.
func (g *Generator) record(ctx context.Context, report *Report, runErr error) {
	if g.history == nil {
		return
	}
	run := history.Run{
		ID:         report.RunID,
		Version:    report.Version,
		Mode:       string(g.cfg.Mode),
		Status:     history.Status(report.Status),
		StartedAt:  report.StartTime,
		FinishedAt: report.EndTime,
		Nodes:      report.Nodes(),
		Files:      report.Stats.Files(),
		DryRun:     report.DryRun,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := g.history.Record(context.WithoutCancel(ctx), run); err != nil {
		observability.WarnContext(ctx, "Failed to record run history", logfields.Error(err))
	}
}

func storageError(message, dest string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ferrors.StorageError(message).WithCause(err).WithContext("destination", dest).Build()
}
