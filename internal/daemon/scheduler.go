package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docgen/internal/logfields"
)

// ErrInvalidInterval is returned by ScheduleEvery for a non-positive interval.
var ErrInvalidInterval = errors.New("schedule interval must be positive")

// Scheduler wraps gocron scheduler for periodic regeneration.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler and waits for running jobs.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleCron runs fn on a five-field cron expression. Overlapping
// executions are skipped.
func (s *Scheduler) ScheduleCron(name, expr string, fn func()) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create cron job %q: %w", expr, err)
	}
	slog.Info("Scheduled regeneration", logfields.Schedule(expr))
	return job.ID().String(), nil
}

// ScheduleEvery runs fn at a fixed interval.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, fn func()) (string, error) {
	if interval <= 0 {
		return "", ErrInvalidInterval
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create periodic job: %w", err)
	}
	slog.Info("Scheduled regeneration", logfields.Schedule("every "+interval.String()))
	return job.ID().String(), nil
}

// ScheduleRuns wires the runner to a cron expression when given, otherwise
// to a fixed interval.
func (s *Scheduler) ScheduleRuns(ctx context.Context, r *Runner, expr string, interval time.Duration) (string, error) {
	fn := func() {
		if _, err := r.Run(ctx, "schedule"); errors.Is(err, ErrRunInProgress) {
			slog.InfoContext(ctx, "Skipping scheduled run, generation in progress")
		}
	}
	if expr != "" {
		return s.ScheduleCron("docgen-cron", expr, fn)
	}
	return s.ScheduleEvery("docgen-interval", interval, fn)
}
