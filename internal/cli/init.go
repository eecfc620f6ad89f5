package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/ecomkpi/internal/config"
	"github.com/roach88/ecomkpi/internal/pipeline"
	"github.com/roach88/ecomkpi/internal/query"
	"github.com/roach88/ecomkpi/queries"
)

// InitSummary is the JSON result of init.
type InitSummary struct {
	Queries string   `json:"queries"`
	Written []string `json:"written"`
	Kept    []string `json:"kept"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the project directories and the stock queries",
		Long: `Create the data, queries, outputs and reports directories under the root
and write the bundled query files into the queries directory. Existing query
files are left as they are.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig(cmd, config.Overrides{})
	if err != nil {
		return formatter.FailConfig(err)
	}

	if err := pipeline.New(cfg).EnsureDirs(); err != nil {
		return formatter.Fail("init failed", err)
	}
	written, kept, err := query.Install(queries.FS, cfg.Paths.QueriesDir())
	if err != nil {
		return formatter.Fail("init failed", err)
	}

	summary := InitSummary{Queries: filepath.ToSlash(cfg.Paths.Queries), Written: written, Kept: kept}
	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	fmt.Fprintf(formatter.Writer, "Wrote %d query files to %s (%d kept)\n", len(written), summary.Queries, len(kept))
	for _, name := range kept {
		formatter.VerboseLog("Kept existing %s", name)
	}
	return nil
}
