package daemon

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/docgen/internal/generator"
	"git.home.luguber.info/inful/docgen/internal/observability"
)

// ErrRunInProgress is returned by Run when another run is executing.
var ErrRunInProgress = errors.New("generation already in progress")

// RunFunc executes one generation run.
type RunFunc func(ctx context.Context) (*generator.Report, error)

// Status is a snapshot of the runner state.
type Status struct {
	Running     bool       `json:"running"`
	Pending     bool       `json:"pending"`
	Runs        int        `json:"runs"`
	Failures    int        `json:"failures"`
	LastTrigger string     `json:"lastTrigger,omitempty"`
	LastRun     *RunStatus `json:"lastRun,omitempty"`
}

// RunStatus describes the most recent completed run.
type RunStatus struct {
	RunID      string    `json:"runId"`
	Version    string    `json:"version"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMS int64     `json:"durationMs"`
	Nodes      int       `json:"nodes"`
	Files      int       `json:"files"`
	Versions   []string  `json:"versions,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Runner is a single-flight guard around a RunFunc.
type Runner struct {
	run RunFunc

	mu    sync.Mutex
	state Status
	idle  chan struct{}

	// settled is called after the runner has gone idle.
	settled func()
}

// NewRunner creates a runner for fn.
func NewRunner(fn RunFunc) *Runner {
	idle := make(chan struct{})
	close(idle)
	return &Runner{run: fn, idle: idle}
}

// Run executes one run now. It fails with ErrRunInProgress instead of
// waiting when a run is already executing. Follow-ups requested while it
// runs are executed before Run returns.
func (r *Runner) Run(ctx context.Context, trigger string) (*generator.Report, error) {
	if !r.begin(trigger) {
		return nil, ErrRunInProgress
	}
	report, err := r.execute(ctx, trigger)
	r.drain(ctx)
	return report, err
}

// Request asks for a run without blocking on an executing one: if a run is
// in progress, exactly one follow-up run is executed after it by the caller
// that owns the executing run, and Request returns immediately.
func (r *Runner) Request(ctx context.Context, trigger string) {
	if !r.claim(trigger) {
		observability.DebugContext(ctx, "Run in progress, queued follow-up", slog.String("trigger", trigger))
		return
	}
	_, _ = r.execute(ctx, trigger)
	r.drain(ctx)
}

// drain executes queued follow-ups and releases the runner. The decision to
// stop and the release happen under one lock so no request is lost.
func (r *Runner) drain(ctx context.Context) {
	for r.next(ctx) {
		_, _ = r.execute(ctx, "follow-up")
	}
	if r.settled != nil {
		r.settled()
	}
}

// next reports whether a follow-up is due. When none is, the runner is
// marked idle before the lock is released.
func (r *Runner) next(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Pending && ctx.Err() == nil {
		r.state.Pending = false
		r.state.LastTrigger = "follow-up"
		return true
	}
	r.state.Pending = false
	r.state.Running = false
	close(r.idle)
	return false
}

// Status returns a snapshot of the runner state.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.state
	if s.LastRun != nil {
		lr := *s.LastRun
		s.LastRun = &lr
	}
	return s
}

// Wait blocks until no run is executing or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	r.mu.Lock()
	idle := r.idle
	r.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) begin(trigger string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Running {
		return false
	}
	r.start(trigger)
	return true
}

func (r *Runner) start(trigger string) {
	r.state.Running = true
	r.state.LastTrigger = trigger
	r.idle = make(chan struct{})
}

// claim starts a run for trigger, or queues a follow-up when one is already
// executing.
func (r *Runner) claim(trigger string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Running {
		r.state.Pending = true
		return false
	}
	r.start(trigger)
	return true
}

func (r *Runner) execute(ctx context.Context, trigger string) (*generator.Report, error) {
	observability.InfoContext(ctx, "Triggered generation", slog.String("trigger", trigger))
	report, err := r.run(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Runs++
	if err != nil {
		r.state.Failures++
	}
	r.state.LastRun = newRunStatus(report, err)
	return report, err
}

func newRunStatus(report *generator.Report, err error) *RunStatus {
	rs := &RunStatus{Status: string(generator.StatusFailed)}
	if report != nil {
		rs.RunID = report.RunID
		rs.Version = report.Version
		rs.Status = string(report.Status)
		rs.StartedAt = report.StartTime
		rs.DurationMS = report.Duration.Milliseconds()
		rs.Nodes = report.Nodes()
		rs.Files = report.Stats.Files()
		rs.Versions = report.Versions
	}
	if err != nil {
		rs.Error = err.Error()
	}
	return rs
}
