package metrics

import "time"

// Outcome enumerates final run states for counters.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
	OutcomeSkipped  Outcome = "skipped"
)

// Recorder defines observability hooks for generation runs.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome Outcome)
	SetTreeNodes(version string, n int)
	AddFiles(class string, n int)
	IncNotifyResult(notifier string, success bool)
	SetLastSuccess(version string, t time.Time)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncRunOutcome(Outcome)                      {}
func (NoopRecorder) SetTreeNodes(string, int)                   {}
func (NoopRecorder) AddFiles(string, int)                       {}
func (NoopRecorder) IncNotifyResult(string, bool)               {}
func (NoopRecorder) SetLastSuccess(string, time.Time)           {}
