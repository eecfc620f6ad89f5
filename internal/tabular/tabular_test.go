package tabular

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "paid_search", "paid_search"},
		{"bytes", []byte("raw"), "raw"},
		{"int64", int64(12000), "12000"},
		{"float", 65.25, "65.25"},
		{"whole float", 5.0, "5"},
		{"bool", true, "true"},
		{"date", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "2024-03-09"},
		{"timestamp", time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC), "2024-03-09T10:30:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}

func TestWriteCSV(t *testing.T) {
	rs := &ResultSet{
		Columns: []string{"channel", "orders", "aov"},
		Rows: [][]any{
			{"email", int64(12), 71.5},
			{"organic, direct", int64(3), nil},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rs))
	assert.Equal(t, "channel,orders,aov\nemail,12,71.5\n\"organic, direct\",3,\n", buf.String())
}

func TestWriteCSVHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, &ResultSet{Columns: []string{"a", "b"}}))
	assert.Equal(t, "a,b\n", buf.String())
}

func TestCSVFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	rs := &ResultSet{
		Columns: []string{"step", "sessions"},
		Rows:    [][]any{{"view", int64(100)}, {"purchase", int64(11)}},
	}
	require.NoError(t, WriteCSVFile(path, rs))

	f, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"step", "sessions"}, f.Columns())
	require.Equal(t, 2, f.Len())
	n, err := f.Int(1, "sessions")
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)
}

func TestReadCSVEmptyInput(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.True(t, f.Empty())
	assert.Empty(t, f.Columns())
}

func TestReadCSVFileMissing(t *testing.T) {
	_, err := ReadCSVFile(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestTableColumnNames(t *testing.T) {
	tbl := Table{Name: "events", Columns: []Column{{"event_id", "INTEGER"}, {"event_type", "TEXT"}}}
	assert.Equal(t, []string{"event_id", "event_type"}, tbl.ColumnNames())
}

func TestTableValidate(t *testing.T) {
	good := Table{
		Name:    "orders",
		Columns: []Column{{Name: "order_id", Type: "INTEGER"}, {Name: "status", Type: "TEXT"}},
		Rows:    [][]any{{int64(1), "delivered"}},
	}
	require.NoError(t, good.Validate())
	assert.Equal(t, []string{"order_id", "status"}, good.ColumnNames())

	tests := []struct {
		name   string
		mutate func(t *Table)
		want   string
	}{
		{"bad table name", func(t *Table) { t.Name = "orders; DROP" }, "invalid table name"},
		{"no columns", func(t *Table) { t.Columns = nil; t.Rows = nil }, "has no columns"},
		{"bad column", func(t *Table) { t.Columns[1].Name = "st atus" }, "invalid column name"},
		{"duplicate column", func(t *Table) { t.Columns[1].Name = "order_id" }, "duplicate column"},
		{"short row", func(t *Table) { t.Rows = [][]any{{int64(1)}} }, "row 1 has 1 values, want 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := Table{
				Name:    good.Name,
				Columns: append([]Column(nil), good.Columns...),
				Rows:    good.Rows,
			}
			tt.mutate(&tbl)
			err := tbl.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
