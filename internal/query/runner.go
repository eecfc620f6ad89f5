package query

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/roach88/ecomkpi/internal/tabular"
)

// Executor runs one SQL statement and returns its materialized result.
// *store.Store satisfies it.
type Executor interface {
	Query(ctx context.Context, sql string) (*tabular.ResultSet, error)
}

// Observer is told about every definition the runner handles.
type Observer interface {
	QuerySkipped(name string)
	QueryRan(name string, rows int)
	QueryFailed(name string)
}

// Error is a query that failed to execute or whose artifact could not be
// written.
type Error struct {
	File string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("query %s: %v", e.File, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Runner executes definitions and writes <name>.csv into OutputDir.
type Runner struct {
	Exec      Executor
	OutputDir string
	// Observer is optional.
	Observer Observer
}

// Run executes defs in the order given, skipping blank ones. It returns the
// file names of the queries that ran. The first failure stops the run:
// nothing after it is executed or written.
func (r *Runner) Run(ctx context.Context, defs []Definition) ([]string, error) {
	ran := make([]string, 0, len(defs))
	for _, def := range defs {
		if def.Blank() {
			slog.Debug("skipping blank query", "file", def.File)
			if r.Observer != nil {
				r.Observer.QuerySkipped(def.Name())
			}
			continue
		}

		rows, err := r.runOne(ctx, def)
		if err != nil {
			if r.Observer != nil {
				r.Observer.QueryFailed(def.Name())
			}
			return ran, &Error{File: def.File, Err: err}
		}

		slog.Debug("query ran", "file", def.File, "rows", rows)
		if r.Observer != nil {
			r.Observer.QueryRan(def.Name(), rows)
		}
		ran = append(ran, def.File)
	}
	return ran, nil
}

func (r *Runner) runOne(ctx context.Context, def Definition) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	rs, err := r.Exec.Query(ctx, def.SQL)
	if err != nil {
		return 0, err
	}
	if err := tabular.WriteCSVFile(filepath.Join(r.OutputDir, def.Artifact()), rs); err != nil {
		return 0, err
	}
	return len(rs.Rows), nil
}
