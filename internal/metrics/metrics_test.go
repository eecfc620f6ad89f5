package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryObserver(t *testing.T) {
	r := New()

	r.QuerySkipped("00_blank")
	r.QueryRan("01_daily_kpis", 366)
	r.QueryRan("02_funnel_counts", 4)
	r.QueryFailed("03_broken")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.QueriesTotal.WithLabelValues("ran")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.QueriesTotal.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.QueriesTotal.WithLabelValues("failed")))
	assert.Equal(t, 366.0, testutil.ToFloat64(r.QueryRows.WithLabelValues("01_daily_kpis")))
}

func TestTableRowsAndSections(t *testing.T) {
	r := New()
	r.SetTableRows("orders", 1650)
	r.SetReportSections(5, 2)
	r.SetDegenerate(true)

	expected := `
# HELP ecomkpi_table_rows Rows loaded into each store table
# TYPE ecomkpi_table_rows gauge
ecomkpi_table_rows{table="orders"} 1650
`
	require.NoError(t, testutil.CollectAndCompare(r.TableRows, strings.NewReader(expected)))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.ReportSections.WithLabelValues("present")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Degenerate))

	r.SetDegenerate(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.Degenerate))
}

func TestObserveStage(t *testing.T) {
	r := New()
	r.ObserveStage("load", 120*time.Millisecond)
	r.ObserveStage("query", 2*time.Second)

	assert.Equal(t, 2, testutil.CollectAndCount(r.StageDuration))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.SetTableRows("customers", 500)
	r.QueryRan("01_daily_kpis", 10)
	r.MarkSuccess(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "ecomkpi.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `ecomkpi_table_rows{table="customers"} 500`)
	assert.Contains(t, text, `ecomkpi_queries_total{outcome="ran"} 1`)
	assert.Contains(t, text, "# TYPE ecomkpi_last_success_timestamp_seconds gauge")
}

func TestWriteTextfileBadPath(t *testing.T) {
	err := New().WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.Error(t, err)
}
