package generator

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/docgen/internal/tree"
)

// Status is the outcome of a run.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// Report summarizes a run. It is returned for failed runs too, with the
// fields filled in up to the failing stage.
type Report struct {
	RunID     string
	Version   string
	Status    Status
	Source    string
	Commit    string
	Root      *tree.Node
	Plan      tree.Plan
	Stats     tree.Stats
	Versions  []string
	DryRun    bool
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// NotifyErrors holds best-effort notification failures of a successful run.
	NotifyErrors []error
}

// Nodes returns the number of nodes in the built tree.
func (r *Report) Nodes() int {
	if r == nil || r.Root == nil {
		return 0
	}
	return r.Root.Count()
}

// String renders the report as a one-line summary.
func (r *Report) String() string {
	return fmt.Sprintf("%s %s: %d nodes, %d files, %d versions in %s",
		r.Version, r.Status, r.Nodes(), r.Stats.Files(), len(r.Versions), r.Duration.Round(time.Millisecond))
}
