package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ecomkpi/internal/config"
	"github.com/roach88/ecomkpi/internal/pipeline"
)

// ReportSummary is the JSON result of report.
type ReportSummary struct {
	Report  string   `json:"report"`
	Present []string `json:"present"`
	Absent  []string `json:"absent"`
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Rewrite the report from the existing artifacts",
		Long: `Regenerate the dataset in memory and rebuild the report from the CSV
artifacts already in the outputs directory. The store is not touched and no
query is executed. Sections whose artifact is missing are left out.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(rootOpts, cmd)
		},
	}
}

func runReport(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig(cmd, config.Overrides{})
	if err != nil {
		return formatter.FailConfig(err)
	}

	p := pipeline.New(cfg)
	d, id, err := p.Generate()
	if err != nil {
		return formatter.Fail("report failed", err)
	}
	if err := p.EnsureDirs(); err != nil {
		return formatter.Fail("report failed", err)
	}
	ran, err := p.ExistingArtifacts()
	if err != nil {
		return formatter.Fail("report failed", err)
	}
	doc, err := p.Report(d, id, ran)
	if err != nil {
		return formatter.Fail("report failed", err)
	}

	summary := ReportSummary{
		Report:  cfg.Paths.DisplayReportPath(),
		Present: doc.Present,
		Absent:  doc.Absent,
	}
	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	fmt.Fprintf(formatter.Writer, "Report written to %s (%d of %d sections)\n",
		summary.Report, len(doc.Present), len(doc.Present)+len(doc.Absent))
	for _, name := range doc.Absent {
		formatter.VerboseLog("No artifact for %s", name)
	}
	return nil
}
