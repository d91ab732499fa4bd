package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/generator"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	DocVersion  string `name:"doc-version" help:"Documentation version to generate (overrides config)"`
	Source      string `short:"s" help:"Source directory (overrides config)"`
	Output      string `short:"o" help:"Output directory for local mode (overrides config)"`
	Mode        string `short:"m" help:"Storage mode: local or remote (overrides config)"`
	Clean       bool   `help:"Clear the version directories before publishing" xor:"clean"`
	NoClean     bool   `name:"no-clean" help:"Keep existing files in the version directories" xor:"clean"`
	DryRun      bool   `name:"dry-run" help:"Build and log the plan without touching the destination"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this textfile after the run"`
}

// Overrides returns the configuration values set on the command line.
func (g *GenerateCmd) Overrides() config.Overrides {
	ov := config.Overrides{
		Version: g.DocVersion,
		Source:  g.Source,
		Output:  g.Output,
		Mode:    g.Mode,
		DryRun:  g.DryRun,
	}
	switch {
	case g.Clean:
		clean := true
		ov.Clean = &clean
	case g.NoClean:
		clean := false
		ov.Clean = &clean
	}
	return ov
}

func (g *GenerateCmd) Run(global *Global, root *CLI) error {
	cfg, err := loadConfig(root, g.Overrides())
	if err != nil {
		return err
	}
	report, err := RunGenerate(context.Background(), cfg, g.MetricsFile)
	if report != nil {
		_, _ = fmt.Fprintln(global.out(), report.String())
	}
	return err
}

// RunGenerate performs a single generation for cfg.
func RunGenerate(ctx context.Context, cfg *config.Config, metricsFile string) (*generator.Report, error) {
	rt, err := newRuntime(ctx, cfg, metricsFile, false)
	if err != nil {
		return nil, err
	}
	defer rt.Close()
	return rt.run(ctx)
}
