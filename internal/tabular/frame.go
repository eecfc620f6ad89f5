package tabular

import (
	"fmt"
	"sort"
	"strconv"
)

// Frame is a read-only view over text records keyed by column name.
type Frame struct {
	columns []string
	records [][]string
	index   map[string]int
}

// NewFrame builds a Frame. Records shorter than the header read as empty
// strings in the missing positions.
func NewFrame(columns []string, records [][]string) *Frame {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := idx[c]; !dup {
			idx[c] = i
		}
	}
	return &Frame{columns: columns, records: records, index: idx}
}

// Columns returns the header.
func (f *Frame) Columns() []string { return f.columns }

// Len returns the number of data records.
func (f *Frame) Len() int { return len(f.records) }

// Empty reports whether the frame has no data records.
func (f *Frame) Empty() bool { return len(f.records) == 0 }

// Has reports whether every named column is present.
func (f *Frame) Has(columns ...string) bool {
	for _, c := range columns {
		if _, ok := f.index[c]; !ok {
			return false
		}
	}
	return true
}

// Cell returns the raw text at (row, column position). Unlike String it
// reaches every column of a header with repeated names.
func (f *Frame) Cell(row, col int) (string, error) {
	if row < 0 || row >= len(f.records) {
		return "", fmt.Errorf("row %d out of range", row)
	}
	if col < 0 || col >= len(f.columns) {
		return "", fmt.Errorf("column %d out of range", col)
	}
	rec := f.records[row]
	if col >= len(rec) {
		return "", nil
	}
	return rec[col], nil
}

// String returns the raw text at (row, column). A repeated column name
// resolves to its first position.
func (f *Frame) String(row int, column string) (string, error) {
	if row < 0 || row >= len(f.records) {
		return "", fmt.Errorf("row %d out of range", row)
	}
	i, ok := f.index[column]
	if !ok {
		return "", fmt.Errorf("no column %q", column)
	}
	rec := f.records[row]
	if i >= len(rec) {
		return "", nil
	}
	return rec[i], nil
}

// Float parses the value at (row, column) as a float.
func (f *Frame) Float(row int, column string) (float64, error) {
	s, err := f.String(row, column)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q row %d: %w", column, row, err)
	}
	return v, nil
}

// Int parses the value at (row, column) as an integer. Values written as
// floats ("12.0") are truncated toward zero.
func (f *Frame) Int(row int, column string) (int64, error) {
	s, err := f.String(row, column)
	if err != nil {
		return 0, err
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q row %d: %w", column, row, err)
	}
	return int64(v), nil
}

// SortKey orders a Frame by one column.
type SortKey struct {
	Column  string
	Desc    bool
	Numeric bool
}

// Sorted returns a new Frame with records stably sorted by keys. Numeric keys
// that fail to parse sort after every parsable value regardless of direction.
func (f *Frame) Sorted(keys ...SortKey) *Frame {
	records := make([][]string, len(f.records))
	copy(records, f.records)
	sort.SliceStable(records, func(a, b int) bool {
		for _, k := range keys {
			c := f.compare(records[a], records[b], k)
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
	return NewFrame(f.columns, records)
}

// Head returns a Frame holding at most the first n records.
func (f *Frame) Head(n int) *Frame {
	if n > len(f.records) {
		n = len(f.records)
	}
	return NewFrame(f.columns, f.records[:n])
}

func (f *Frame) cell(rec []string, column string) string {
	i, ok := f.index[column]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func (f *Frame) compare(a, b []string, k SortKey) int {
	av, bv := f.cell(a, k.Column), f.cell(b, k.Column)
	var c int
	if k.Numeric {
		af, aerr := strconv.ParseFloat(av, 64)
		bf, berr := strconv.ParseFloat(bv, 64)
		switch {
		case aerr != nil && berr != nil:
			return 0
		case aerr != nil:
			return 1
		case berr != nil:
			return -1
		case af < bf:
			c = -1
		case af > bf:
			c = 1
		}
	} else {
		switch {
		case av < bv:
			c = -1
		case av > bv:
			c = 1
		}
	}
	if k.Desc {
		c = -c
	}
	return c
}
