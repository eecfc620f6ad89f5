package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/ecomkpi/internal/config"
	"github.com/roach88/ecomkpi/internal/pipeline"
)

// TableCount is one loaded table.
type TableCount struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

// GenerateSummary is the JSON result of generate.
type GenerateSummary struct {
	DatasetID  string       `json:"dataset_id"`
	Database   string       `json:"database"`
	Degenerate bool         `json:"degenerate"`
	Tables     []TableCount `json:"tables"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate the dataset and load it into the store",
		Long: `Generate the synthetic dataset and replace the store's tables with it.
No queries are run and no report is written.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(rootOpts, cmd)
		},
	}
}

func runGenerate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig(cmd, config.Overrides{})
	if err != nil {
		return formatter.FailConfig(err)
	}

	p := pipeline.New(cfg)
	d, id, err := p.Generate()
	if err != nil {
		return formatter.Fail("generate failed", err)
	}

	st, err := p.OpenStore()
	if err != nil {
		return formatter.Fail("generate failed", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing store", "error", closeErr)
		}
	}()

	counts, err := p.Load(cmd.Context(), st, d)
	if err != nil {
		return formatter.Fail("generate failed", err)
	}

	summary := GenerateSummary{
		DatasetID:  id,
		Database:   filepath.ToSlash(cfg.Paths.Database),
		Degenerate: d.Degenerate,
	}
	for _, t := range d.Tables() {
		summary.Tables = append(summary.Tables, TableCount{Table: t.Name, Rows: counts[t.Name]})
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	fmt.Fprintf(formatter.Writer, "Loaded %d tables into %s\n", len(summary.Tables), summary.Database)
	for _, tc := range summary.Tables {
		fmt.Fprintf(formatter.Writer, "  %-10s %d\n", tc.Table, tc.Rows)
	}
	fmt.Fprintf(formatter.Writer, "Dataset id: %s\n", id)
	return nil
}
