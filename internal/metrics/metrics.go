// Package metrics records what a pipeline run did and writes it as a
// Prometheus textfile, for a node exporter textfile collector to pick up.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ecomkpi"

// Recorder holds the metrics of one run on its own registry.
type Recorder struct {
	reg *prometheus.Registry

	TableRows      *prometheus.GaugeVec
	QueriesTotal   *prometheus.CounterVec
	QueryRows      *prometheus.GaugeVec
	StageDuration  *prometheus.HistogramVec
	ReportSections *prometheus.GaugeVec
	Degenerate     prometheus.Gauge
	LastSuccess    prometheus.Gauge
}

// New creates a Recorder with every metric registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		reg: reg,
		TableRows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_rows",
			Help:      "Rows loaded into each store table",
		}, []string{"table"}),
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Query definitions handled, by outcome",
		}, []string{"outcome"}),
		QueryRows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "query_result_rows",
			Help:      "Rows in each query artifact",
		}, []string{"query"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		ReportSections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "report_sections",
			Help:      "Optional report sections by state",
		}, []string{"state"}),
		Degenerate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_degenerate",
			Help:      "1 when no session purchased and the fallback promoted one",
		}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time the last successful run finished",
		}),
	}
}

// Registry exposes the Recorder's registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// QuerySkipped counts a blank definition.
func (r *Recorder) QuerySkipped(name string) {
	r.QueriesTotal.WithLabelValues("skipped").Inc()
}

// QueryRan counts an executed definition and records its result size.
func (r *Recorder) QueryRan(name string, rows int) {
	r.QueriesTotal.WithLabelValues("ran").Inc()
	r.QueryRows.WithLabelValues(name).Set(float64(rows))
}

// QueryFailed counts a definition that aborted the run.
func (r *Recorder) QueryFailed(name string) {
	r.QueriesTotal.WithLabelValues("failed").Inc()
}

// ObserveStage records how long stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// SetTableRows records the loaded size of table.
func (r *Recorder) SetTableRows(table string, rows int) {
	r.TableRows.WithLabelValues(table).Set(float64(rows))
}

// SetReportSections records how many optional sections rendered.
func (r *Recorder) SetReportSections(present, absent int) {
	r.ReportSections.WithLabelValues("present").Set(float64(present))
	r.ReportSections.WithLabelValues("absent").Set(float64(absent))
}

// SetDegenerate flags a dataset built through the fallback.
func (r *Recorder) SetDegenerate(degenerate bool) {
	if degenerate {
		r.Degenerate.Set(1)
		return
	}
	r.Degenerate.Set(0)
}

// MarkSuccess stamps the finish time of a successful run.
func (r *Recorder) MarkSuccess(now time.Time) {
	r.LastSuccess.Set(float64(now.Unix()))
}

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
