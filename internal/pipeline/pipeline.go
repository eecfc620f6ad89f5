package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/roach88/ecomkpi/internal/config"
	"github.com/roach88/ecomkpi/internal/dataset"
	"github.com/roach88/ecomkpi/internal/export"
	"github.com/roach88/ecomkpi/internal/metrics"
	"github.com/roach88/ecomkpi/internal/publish"
	"github.com/roach88/ecomkpi/internal/query"
	"github.com/roach88/ecomkpi/internal/report"
	"github.com/roach88/ecomkpi/internal/store"
)

// Uploader publishes finished files. *publish.Publisher satisfies it.
type Uploader interface {
	Publish(ctx context.Context, runID string, files []publish.File) ([]string, error)
}

// Pipeline runs stages against one configuration.
type Pipeline struct {
	Config  config.Config
	Metrics *metrics.Recorder

	// Uploader is used when publishing is configured. When nil an S3
	// client is built from the default AWS credential chain.
	Uploader Uploader

	// Now stamps metrics; defaults to time.Now.
	Now func() time.Time
}

// New creates a Pipeline with a fresh metrics recorder.
func New(cfg config.Config) *Pipeline {
	return &Pipeline{Config: cfg, Metrics: metrics.New(), Now: time.Now}
}

// Result describes a finished run.
type Result struct {
	Dataset    *dataset.Dataset
	DatasetID  string
	Tables     map[string]int
	Ran        []string
	Report     *report.Document
	ReportPath string
	Workbook   string
	Sheets     int
	Published  []string
}

// Run executes the full pipeline. Generation validates the parameters
// before any directory is created.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	var err error
	if res.Dataset, res.DatasetID, err = p.Generate(); err != nil {
		return nil, err
	}

	st, err := p.OpenStore()
	if err != nil {
		return nil, err
	}
	defer closeStore(st)

	if res.Tables, err = p.Load(ctx, st, res.Dataset); err != nil {
		return nil, err
	}
	if err = p.discardReport(); err != nil {
		return nil, err
	}
	if res.Ran, err = p.Query(ctx, st); err != nil {
		return nil, err
	}
	if res.Report, err = p.Report(res.Dataset, res.DatasetID, res.Ran); err != nil {
		return nil, err
	}
	res.ReportPath = p.Config.Paths.DisplayReportPath()

	if p.Config.Workbook != "" {
		res.Workbook = p.Config.Workbook
		if res.Sheets, err = p.Export(res.Ran); err != nil {
			return nil, err
		}
	}
	if p.Config.Publish.Enabled() {
		if res.Published, err = p.Publish(ctx, res.DatasetID, res.Ran); err != nil {
			return nil, err
		}
	}

	p.Metrics.MarkSuccess(p.now())
	if err := p.WriteMetrics(); err != nil {
		return nil, err
	}
	return res, nil
}

// Generate builds the dataset and its fingerprint.
func (p *Pipeline) Generate() (*dataset.Dataset, string, error) {
	var (
		d  *dataset.Dataset
		id string
	)
	err := p.stage(StageGenerate, func() error {
		var err error
		if d, err = dataset.Generate(p.Config.Generation); err != nil {
			return err
		}
		if id, err = dataset.Fingerprint(p.Config.Generation); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	p.Metrics.SetDegenerate(d.Degenerate)
	if d.Degenerate {
		slog.Warn("no session reached purchase; promoted the lowest session id", "session_id", d.Purchasing[0])
	}
	st := d.Stats()
	slog.Info("dataset generated",
		"customers", st.Customers, "sessions", st.Sessions,
		"events", st.Events, "orders", st.Orders, "dataset_id", id)
	return d, id, nil
}

// Verify generates the dataset and checks every integrity invariant.
func (p *Pipeline) Verify() (*dataset.Dataset, string, error) {
	d, id, err := p.Generate()
	if err != nil {
		return nil, "", err
	}
	if err := p.stage(StageVerify, func() error { return dataset.Check(d) }); err != nil {
		return d, id, err
	}
	return d, id, nil
}

// OpenStore creates the database directory and opens the store.
func (p *Pipeline) OpenStore() (*store.Store, error) {
	if err := p.EnsureDirs(); err != nil {
		return nil, err
	}
	return p.openStore()
}

func (p *Pipeline) openStore() (*store.Store, error) {
	dbPath := p.Config.Paths.DatabasePath()
	slog.Debug("opening store", "path", dbPath)
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, &StageError{Stage: StageLoad, Err: err}
	}
	return st, nil
}

// closeStore releases st, logging a failure rather than masking the run's
// own result.
func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("error closing store", "error", err)
	}
}

// Load replaces every dataset table in st and returns the row counts.
func (p *Pipeline) Load(ctx context.Context, st *store.Store, d *dataset.Dataset) (map[string]int, error) {
	tables := d.Tables()
	counts := make(map[string]int, len(tables))
	err := p.stage(StageLoad, func() error {
		if err := st.LoadAll(ctx, tables); err != nil {
			return err
		}
		for _, t := range tables {
			counts[t.Name] = len(t.Rows)
			p.Metrics.SetTableRows(t.Name, len(t.Rows))
			slog.Debug("table loaded", "table", t.Name, "rows", len(t.Rows))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("tables loaded", "tables", len(tables), "path", p.Config.Paths.DatabasePath())
	return counts, nil
}

// Query runs every definition in the queries directory against st.
func (p *Pipeline) Query(ctx context.Context, st query.Executor) ([]string, error) {
	var ran []string
	err := p.stage(StageQuery, func() error {
		defs, err := query.Discover(os.DirFS(p.Config.Paths.QueriesDir()))
		if err != nil {
			return err
		}
		runner := &query.Runner{
			Exec:      st,
			OutputDir: p.Config.Paths.OutputsDir(),
			Observer:  p.Metrics,
		}
		ran, err = runner.Run(ctx, defs)
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.Info("queries executed", "ran", len(ran), "outputs", p.Config.Paths.OutputsDir())
	return ran, nil
}

// Report renders the report from the artifacts on disk and writes it.
func (p *Pipeline) Report(d *dataset.Dataset, datasetID string, ran []string) (*report.Document, error) {
	paths := p.Config.Paths
	var doc *report.Document
	err := p.stage(StageReport, func() error {
		doc = report.Build(report.Input{
			Dataset:    d,
			DatasetID:  datasetID,
			Ran:        ran,
			Database:   paths.Database,
			QueriesDir: paths.Queries,
			OutputsDir: paths.Outputs,
			Artifacts:  report.DirSource{Dir: paths.OutputsDir()},
		})
		return report.WriteFile(paths.ReportPath(), doc)
	})
	if err != nil {
		return nil, err
	}
	p.Metrics.SetReportSections(len(doc.Present), len(doc.Absent))
	slog.Info("report written", "path", paths.ReportPath(), "sections", len(doc.Present))
	return doc, nil
}

// discardReport removes the previous run's report so a failed query stage
// leaves no report describing stale artifacts.
func (p *Pipeline) discardReport() error {
	err := os.Remove(p.Config.Paths.ReportPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &StageError{Stage: StageQuery, Err: fmt.Errorf("remove previous report: %w", err)}
	}
	return nil
}

// ExistingArtifacts lists the query files whose artifact is on disk, in
// discovery order. It backs re-rendering a report without re-running queries.
func (p *Pipeline) ExistingArtifacts() ([]string, error) {
	defs, err := query.Discover(os.DirFS(p.Config.Paths.QueriesDir()))
	if err != nil {
		return nil, &StageError{Stage: StageReport, Err: err}
	}
	var files []string
	for _, def := range defs {
		if def.Blank() {
			continue
		}
		if _, err := os.Stat(filepath.Join(p.Config.Paths.OutputsDir(), def.Artifact())); err == nil {
			files = append(files, def.File)
		}
	}
	return files, nil
}

// Export writes the configured workbook from the artifacts of ran.
func (p *Pipeline) Export(ran []string) (int, error) {
	var sheets int
	err := p.stage(StageExport, func() error {
		wbPath := p.Config.Paths.Resolve(p.Config.Workbook)
		if err := os.MkdirAll(filepath.Dir(wbPath), 0o755); err != nil {
			return err
		}
		var err error
		sheets, err = export.Workbook(wbPath, p.Config.Paths.OutputsDir(), artifactNames(ran))
		return err
	})
	if err != nil {
		return 0, err
	}
	slog.Info("workbook written", "path", p.Config.Workbook, "sheets", sheets)
	return sheets, nil
}

// Publish uploads the artifacts of ran and the report under the dataset id.
func (p *Pipeline) Publish(ctx context.Context, datasetID string, ran []string) ([]string, error) {
	var keys []string
	err := p.stage(StagePublish, func() error {
		up := p.Uploader
		if up == nil {
			client, err := publish.NewClient(ctx, p.Config.Publish)
			if err != nil {
				return err
			}
			up = publish.New(client, p.Config.Publish)
		}
		var err error
		keys, err = up.Publish(ctx, datasetID, p.publishFiles(ran))
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.Info("artifacts published", "bucket", p.Config.Publish.Bucket, "objects", len(keys))
	return keys, nil
}

// publishFiles lists the run's files with their keys under the run prefix:
// outputs/<artifact>.csv, reports/report.md and the workbook's base name.
func (p *Pipeline) publishFiles(ran []string) []publish.File {
	paths := p.Config.Paths
	var files []publish.File
	for _, name := range artifactNames(ran) {
		files = append(files, publish.File{
			Path: filepath.Join(paths.OutputsDir(), name+".csv"),
			Key:  path.Join("outputs", name+".csv"),
		})
	}
	files = append(files, publish.File{
		Path: paths.ReportPath(),
		Key:  path.Join("reports", config.ReportFile),
	})
	if p.Config.Workbook != "" {
		files = append(files, publish.File{
			Path: paths.Resolve(p.Config.Workbook),
			Key:  filepath.Base(p.Config.Workbook),
		})
	}
	return files
}

// WriteMetrics writes the metrics textfile when one is configured.
func (p *Pipeline) WriteMetrics() error {
	if p.Config.Metrics == "" {
		return nil
	}
	promPath := p.Config.Paths.Resolve(p.Config.Metrics)
	if err := os.MkdirAll(filepath.Dir(promPath), 0o755); err != nil {
		return &StageError{Stage: StageMetrics, Err: err}
	}
	if err := p.Metrics.WriteTextfile(promPath); err != nil {
		return &StageError{Stage: StageMetrics, Err: err}
	}
	slog.Debug("metrics written", "path", promPath)
	return nil
}

// EnsureDirs creates the store, query, output and report directories.
func (p *Pipeline) EnsureDirs() error {
	return p.stage(StageSetup, p.ensureDirs)
}

func (p *Pipeline) ensureDirs() error {
	paths := p.Config.Paths
	dirs := []string{
		filepath.Dir(paths.DatabasePath()),
		paths.QueriesDir(),
		paths.OutputsDir(),
		paths.ReportsDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// stage runs fn, records its duration and wraps a failure in a StageError.
func (p *Pipeline) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.Metrics.ObserveStage(name, time.Since(start))
	if err != nil {
		return &StageError{Stage: name, Err: err}
	}
	return nil
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// artifactNames maps query file names to artifact names.
func artifactNames(ran []string) []string {
	names := make([]string, len(ran))
	for i, f := range ran {
		names[i] = query.Definition{File: f}.Name()
	}
	return names
}
