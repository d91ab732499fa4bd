package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/docgen/internal/config"
	ferrors "git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit      int    `short:"n" help:"Maximum number of runs to show" default:"20"`
	DocVersion string `name:"doc-version" help:"Only show runs for this documentation version"`
}

func (h *HistoryCmd) Run(global *Global, root *CLI) error {
	cfg, err := loadConfig(root, config.Overrides{})
	if err != nil {
		return err
	}
	runs, err := RecentRuns(context.Background(), cfg, h.DocVersion, h.Limit)
	if err != nil {
		return err
	}
	return writeRuns(global.out(), runs)
}

// RecentRuns reads the newest runs from the configured ledger.
func RecentRuns(ctx context.Context, cfg *config.Config, version string, limit int) ([]history.Run, error) {
	if cfg.History.Path == "" {
		return nil, ferrors.ConfigError("run history is not configured").
			WithContext("setting", "history.path").
			Build()
	}
	h, err := openHistory(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = h.Close() }()

	runs, err := h.Recent(ctx, version, limit)
	if err != nil {
		return nil, ferrors.StorageError("failed to read run history").
			WithCause(err).
			WithContext("path", cfg.History.Path).
			Build()
	}
	return runs, nil
}

func writeRuns(out io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(out, "no runs recorded")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RUN\tVERSION\tSTATUS\tSTARTED\tDURATION\tNODES\tFILES\tERROR")
	for _, r := range runs {
		status := string(r.Status)
		if r.DryRun {
			status += " (dry run)"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.Version, status,
			r.StartedAt.UTC().Format(time.RFC3339),
			r.Duration().Round(time.Millisecond),
			r.Nodes, r.Files, r.Error)
	}
	return tw.Flush()
}
