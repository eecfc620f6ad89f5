package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/ecomkpi/internal/tabular"
)

// ReplaceTable creates or overwrites the relation t.Name with t's columns and
// rows, in one transaction.
func (s *Store) ReplaceTable(ctx context.Context, t tabular.Table) error {
	if s.db == nil {
		return &Error{Op: "load", Name: t.Name, Err: ErrClosed}
	}
	if err := t.Validate(); err != nil {
		return &Error{Op: "load", Name: t.Name, Err: err}
	}
	if err := s.replace(ctx, t); err != nil {
		return &Error{Op: "load", Name: t.Name, Err: err}
	}
	return nil
}

// LoadAll replaces every table in order and stops at the first failure.
func (s *Store) LoadAll(ctx context.Context, tables []tabular.Table) error {
	for _, t := range tables {
		if err := s.ReplaceTable(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) replace(ctx context.Context, t tabular.Table) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(t.Name)); err != nil {
		return fmt.Errorf("drop: %w", err)
	}
	if _, err = tx.ExecContext(ctx, createStatement(t)); err != nil {
		return fmt.Errorf("create: %w", err)
	}

	if len(t.Rows) > 0 {
		stmt, perr := tx.PrepareContext(ctx, insertStatement(t))
		if perr != nil {
			err = perr
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, row := range t.Rows {
			if _, err = stmt.ExecContext(ctx, row...); err != nil {
				return fmt.Errorf("insert row %d: %w", i+1, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func createStatement(t tabular.Table) string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = quoteIdent(c.Name) + " " + c.Type
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(t.Name), strings.Join(defs, ", "))
}

func insertStatement(t tabular.Table) string {
	names := t.ColumnNames()
	marks := make([]string, len(names))
	for i, name := range names {
		names[i] = quoteIdent(name)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(t.Name), strings.Join(names, ", "), strings.Join(marks, ", "))
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
