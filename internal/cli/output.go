package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/ecomkpi/internal/dataset"
	"github.com/roach88/ecomkpi/internal/pipeline"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful run
	ExitFailure      = 1 // Run failure (store, query, integrity, publish)
	ExitCommandError = 2 // Command error (bad flags, invalid configuration)
)

// Error codes reported in CLIError.Code.
const (
	ErrCodeGeneric   = "E001"
	ErrCodeConfig    = "E002"
	ErrCodeStage     = "E003"
	ErrCodeIntegrity = "E004"
	ErrCodeWrite     = "E005"
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error

	// reported is set once the error has been written to the command output.
	reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Verbose output goes here so JSON on Writer stays clean
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command's output.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success outputs a successful result in the configured format. In text
// format data is printed with its default formatting, so text callers
// usually pass a string.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Fail reports err through the formatter and returns the ExitError the
// command should return. Invalid configuration exits with
// ExitCommandError; everything else is a run failure.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, exit, details := classify(err)
	_ = f.Error(code, fmt.Sprintf("%s: %v", message, err), details)
	exitErr := WrapExitError(exit, message, err)
	exitErr.reported = true
	return exitErr
}

func classify(err error) (code string, exit int, details any) {
	var (
		cfgErr       *dataset.ConfigError
		integrityErr *dataset.IntegrityError
		stageErr     *pipeline.StageError
	)
	switch {
	case errors.As(err, &cfgErr):
		return ErrCodeConfig, ExitCommandError, cfgErr.Problems
	case errors.As(err, &integrityErr):
		return ErrCodeIntegrity, ExitFailure, integrityErr.Violations
	case errors.As(err, &stageErr):
		return ErrCodeStage, ExitFailure, map[string]string{"stage": stageErr.Stage}
	default:
		return ErrCodeGeneric, ExitFailure, nil
	}
}

// FailConfig reports a configuration that could not be loaded. It always
// exits with ExitCommandError.
func (f *OutputFormatter) FailConfig(err error) error {
	var details any
	var cfgErr *dataset.ConfigError
	if errors.As(err, &cfgErr) {
		details = cfgErr.Problems
	}
	_ = f.Error(ErrCodeConfig, err.Error(), details)
	exitErr := WrapExitError(ExitCommandError, "invalid configuration", err)
	exitErr.reported = true
	return exitErr
}
