package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/ecomkpi/internal/tabular"
)

// Query executes sqlText and materializes every row. Text values come back
// as strings and DATE columns as YYYY-MM-DD strings.
func (s *Store) Query(ctx context.Context, sqlText string) (*tabular.ResultSet, error) {
	if s.db == nil {
		return nil, &Error{Op: "query", Err: ErrClosed}
	}
	rs, err := s.query(ctx, sqlText)
	if err != nil {
		return nil, &Error{Op: "query", Err: err}
	}
	return rs, nil
}

func (s *Store) query(ctx context.Context, sqlText string) (*tabular.ResultSet, error) {
	rows, err := s.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	rs := &tabular.ResultSet{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		for i, v := range values {
			values[i] = normalize(v)
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return rs, nil
}

// normalize turns driver representations into plain values. The sqlite3
// driver parses DATE-declared columns into time.Time.
func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return tabular.FormatValue(x)
	default:
		return v
	}
}

// Tables lists the user tables in the store, sorted by name.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, &Error{Op: "tables", Err: ErrClosed}
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, &Error{Op: "tables", Err: err}
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &Error{Op: "tables", Err: err}
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "tables", Err: err}
	}
	return names, nil
}

// Count returns the number of rows in table.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	if s.db == nil {
		return 0, &Error{Op: "count", Name: table, Err: ErrClosed}
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(table)).Scan(&n); err != nil {
		return 0, &Error{Op: "count", Name: table, Err: err}
	}
	return n, nil
}
