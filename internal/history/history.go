// Package history keeps a ledger of generation runs.
package history

import (
	"context"
	"time"
)

// Status is the final state of a run.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// Run is one ledger entry.
type Run struct {
	ID         string
	Version    string
	Mode       string
	Status     Status
	StartedAt  time.Time
	FinishedAt time.Time
	Nodes      int
	Files      int
	DryRun     bool
	Error      string
}

// Duration returns the wall time of the run.
func (r Run) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// Store persists runs.
type Store interface {
	// Record inserts or replaces the run with the same ID.
	Record(ctx context.Context, run Run) error
	// Recent returns up to limit runs, newest first. A version filter of ""
	// matches every version.
	Recent(ctx context.Context, version string, limit int) ([]Run, error)
	// Close releases resources.
	Close() error
}
