package cli

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ecomkpi/internal/harness"
)

// ErrCodeScenario reports failed scenarios in JSON output.
const ErrCodeScenario = "E006"

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario name glob
	Keep   bool   // keep each scenario's project directory
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Dir    string   `json:"dir,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult is the JSON result of test.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario.yaml|dir>...",
		Short: "Run scenario files against a fresh project",
		Long: `Run YAML scenarios end to end. Each scenario gets its own temporary
project directory: its config is written there, the selected bundled queries
are installed, the full pipeline runs with the process environment ignored,
and every assertion is checked against the database, artifacts and report.

Directories are searched recursively for .yaml and .yml files.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (missing path, bad filter)

Examples:
  ecomkpi test scenarios/baseline.yaml
  ecomkpi test scenarios --filter "degenerate*"
  ecomkpi test scenarios --keep --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenario files whose base name matches this glob")
	cmd.Flags().BoolVar(&opts.Keep, "keep", false, "keep scenario project directories")

	return cmd
}

func runTests(opts *TestOptions, paths []string, cmd *cobra.Command) error {
	if opts.Filter != "" {
		if _, err := filepath.Match(opts.Filter, ""); err != nil {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid filter pattern %q", opts.Filter))
		}
	}

	var files []string
	for _, p := range paths {
		found, err := findScenarioFiles(p, opts.Filter)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find scenarios", err)
		}
		files = append(files, found...)
	}

	result := TestResult{Scenarios: make([]ScenarioResult, 0, len(files)), Total: len(files)}
	for _, file := range files {
		sr := runScenario(opts, file, cmd)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}
	return outputTestText(cmd, result)
}

// findScenarioFiles returns root itself when it is a file, otherwise every
// YAML file below it in lexical order.
func findScenarioFiles(root, filter string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !matchesFilter(root, filter) {
			return nil, nil
		}
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(p); ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if matchesFilter(p, filter) {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func matchesFilter(file, filter string) bool {
	if filter == "" {
		return true
	}
	base := filepath.Base(file)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	ok, _ := filepath.Match(filter, name)
	return ok
}

// runScenario loads, runs and checks one scenario file.
func runScenario(opts *TestOptions, file string, cmd *cobra.Command) ScenarioResult {
	w := cmd.OutOrStdout()
	text := opts.Format != "json"
	sr := ScenarioResult{Name: filepath.Base(file), File: file}

	fail := func(errs ...string) ScenarioResult {
		sr.Errors = errs
		if text {
			fmt.Fprintf(w, "✗ %s\n", sr.Name)
			for _, e := range errs {
				fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(e, "\n", "\n  "))
			}
			if sr.Dir != "" {
				fmt.Fprintf(w, "  kept %s\n", sr.Dir)
			}
		}
		return sr
	}

	sc, err := harness.LoadScenario(file)
	if err != nil {
		return fail(fmt.Sprintf("load error: %v", err))
	}
	sr.Name = sc.Name

	dir, err := os.MkdirTemp("", "ecomkpi-scenario-*")
	if err != nil {
		return fail(fmt.Sprintf("create project directory: %v", err))
	}
	if opts.Keep {
		sr.Dir = dir
	} else {
		defer os.RemoveAll(dir)
	}

	ctx := cmd.Context()
	res, err := harness.Run(ctx, dir, sc)
	if err != nil {
		return fail(fmt.Sprintf("execution error: %v", err))
	}
	if err := harness.Check(ctx, res, sc); err != nil {
		return fail(splitErrors(err)...)
	}

	sr.Pass = true
	if text {
		fmt.Fprintf(w, "✓ %s\n", sr.Name)
		if sr.Dir != "" {
			fmt.Fprintf(w, "  kept %s\n", sr.Dir)
		}
	}
	return sr
}

// splitErrors flattens an errors.Join result into one message per error.
func splitErrors(err error) []string {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []string{err.Error()}
	}
	var msgs []string
	for _, e := range joined.Unwrap() {
		msgs = append(msgs, e.Error())
	}
	return msgs
}

func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeScenario,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	if err := json.NewEncoder(cmd.OutOrStdout()).Encode(response); err != nil {
		return err
	}
	if result.Failed > 0 {
		exitErr := NewExitError(ExitFailure, response.Error.Message)
		exitErr.reported = true
		return exitErr
	}
	return nil
}

func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
