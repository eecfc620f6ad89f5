package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ecomkpi/internal/config"
	"github.com/roach88/ecomkpi/internal/pipeline"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Workbook string
	Metrics  string

	// Uploader replaces the S3 publisher when set (for testing).
	Uploader pipeline.Uploader
}

// RunSummary is the JSON result of a run.
type RunSummary struct {
	DatasetID string         `json:"dataset_id"`
	Seed      int64          `json:"seed"`
	Tables    map[string]int `json:"tables"`
	Queries   []string       `json:"queries"`
	Report    string         `json:"report"`
	Sections  []string       `json:"sections"`
	Workbook  string         `json:"workbook,omitempty"`
	Published []string       `json:"published,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate, load, query and report in one pass",
		Long: `Run the full pipeline: generate the dataset, load it into the store, execute
every query in the queries directory and write the report.

Example:
  ecomkpi run
  ecomkpi run --seed 7 --workbook outputs/kpis.xlsx --metrics metrics/ecomkpi.prom`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Workbook, "workbook", "", "also write the artifacts to this .xlsx workbook")
	cmd.Flags().StringVar(&opts.Metrics, "metrics", "", "write run metrics to this Prometheus textfile")

	return cmd
}

func runPipeline(opts *RunOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig(cmd, config.Overrides{Workbook: opts.Workbook, Metrics: opts.Metrics})
	if err != nil {
		return formatter.FailConfig(err)
	}

	p := pipeline.New(cfg)
	p.Uploader = opts.Uploader
	res, err := p.Run(cmd.Context())
	if err != nil {
		return formatter.Fail("run failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(RunSummary{
			DatasetID: res.DatasetID,
			Seed:      cfg.Generation.Seed,
			Tables:    res.Tables,
			Queries:   res.Ran,
			Report:    res.ReportPath,
			Sections:  res.Report.Present,
			Workbook:  res.Workbook,
			Published: res.Published,
		})
	}

	formatter.VerboseLog("Ran %d queries, %d report sections", len(res.Ran), len(res.Report.Present))
	if res.Workbook != "" {
		formatter.VerboseLog("Workbook: %s (%d sheets)", res.Workbook, res.Sheets)
	}
	fmt.Fprintf(formatter.Writer, "Done. Open %s\n", res.ReportPath)
	return nil
}
