// Package tabular holds the row-oriented values that move between the
// generator, the store and the query artifacts.
package tabular

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// DateLayout is the rendering of calendar days everywhere in the pipeline.
const DateLayout = "2006-01-02"

// Column is a named column with its declared SQL type.
type Column struct {
	Name string
	Type string
}

// Table is a named relation to be materialized in the store.
// Column order is significant and preserved.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks that the table and column names are plain identifiers and
// that every row has one value per column.
func (t Table) Validate() error {
	if !identPattern.MatchString(t.Name) {
		return fmt.Errorf("invalid table name %q", t.Name)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s has no columns", t.Name)
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if !identPattern.MatchString(c.Name) {
			return fmt.Errorf("table %s: invalid column name %q", t.Name, c.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("table %s: duplicate column %q", t.Name, c.Name)
		}
		seen[c.Name] = true
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("table %s: row %d has %d values, want %d", t.Name, i+1, len(row), len(t.Columns))
		}
	}
	return nil
}

// ResultSet is the materialized result of one query.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// FormatValue renders a scanned SQL value as CSV text.
// NULL renders as the empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(DateLayout)
		}
		return x.Format(time.RFC3339)
	default:
		return ""
	}
}
