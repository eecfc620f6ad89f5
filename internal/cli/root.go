package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/ecomkpi/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	Root       string
	Seed       int64
	Database   string

	// LookupEnv replaces os.LookupEnv when set.
	LookupEnv func(string) (string, bool)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ecomkpi CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ecomkpi",
		Short: "Synthetic e-commerce KPI pipeline",
		Long: `Generate a deterministic synthetic e-commerce dataset, load it into SQLite,
run the SQL files in the queries directory and write a markdown KPI report.

The same configuration always produces the same dataset, artifacts and report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			setupLogging(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (.yaml, .yml or .cue)")
	flags.StringVar(&opts.Root, "root", ".", "project directory relative paths resolve against")
	flags.Int64Var(&opts.Seed, "seed", 0, "generator seed (overrides config and environment)")
	flags.StringVar(&opts.Database, "db", "", "SQLite database path")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code. Errors
// a command has not already reported are written to stderr.
func Execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, NewRootCommand(), args, stdout, stderr)
}

func execute(ctx context.Context, cmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		// Flag, argument and unknown command errors from cobra.
		err = WrapExitError(ExitCommandError, "invalid command line", err)
	}
	if !errors.As(err, &exitErr) || !exitErr.reported {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return GetExitCode(err)
}

// setupLogging sends structured logs to w; verbose lowers the level to Debug.
func setupLogging(w io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// formatter builds the OutputFormatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// loadConfig assembles the configuration from the global flags plus the
// command's own overrides.
func (o *RootOptions) loadConfig(cmd *cobra.Command, extra config.Overrides) (config.Config, error) {
	overrides := extra
	if cmd.Flags().Changed("seed") {
		seed := o.Seed
		overrides.Seed = &seed
	}
	overrides.Database = o.Database

	cfg, err := config.Load(config.LoadOptions{
		Root:      o.Root,
		File:      o.ConfigFile,
		LookupEnv: o.LookupEnv,
		Overrides: overrides,
	})
	if err != nil {
		return config.Config{}, err
	}
	slog.Debug("configuration loaded",
		"root", cfg.Paths.Root, "seed", cfg.Generation.Seed,
		"customers", cfg.Generation.Customers, "sessions", cfg.Generation.Sessions)
	return cfg, nil
}
