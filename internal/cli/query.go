package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/ecomkpi/internal/config"
	"github.com/roach88/ecomkpi/internal/pipeline"
)

// QuerySummary is the JSON result of query.
type QuerySummary struct {
	Outputs string   `json:"outputs"`
	Queries []string `json:"queries"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query",
		Short: "Run the query set against the existing store",
		Long: `Execute every .sql file in the queries directory, in file name order, against
the store written by a previous generate or run, and write one CSV artifact
per query. Blank files are skipped.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, cmd)
		},
	}
}

func runQuery(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig(cmd, config.Overrides{})
	if err != nil {
		return formatter.FailConfig(err)
	}

	p := pipeline.New(cfg)
	st, err := p.OpenStore()
	if err != nil {
		return formatter.Fail("query failed", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing store", "error", closeErr)
		}
	}()

	ran, err := p.Query(cmd.Context(), st)
	if err != nil {
		return formatter.Fail("query failed", err)
	}

	summary := QuerySummary{Outputs: filepath.ToSlash(cfg.Paths.Outputs), Queries: ran}
	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	fmt.Fprintf(formatter.Writer, "Ran %d queries into %s\n", len(ran), summary.Outputs)
	for _, q := range ran {
		fmt.Fprintf(formatter.Writer, "  %s\n", q)
	}
	return nil
}
