// Package config assembles the run configuration from defaults, an optional
// YAML or CUE file, a .env file, the process environment and command line
// overrides, in increasing order of precedence.
package config

import (
	"path/filepath"

	"github.com/roach88/ecomkpi/internal/dataset"
	"github.com/roach88/ecomkpi/internal/publish"
)

// Config is everything a run needs.
type Config struct {
	Generation dataset.Params `yaml:"generation" json:"generation"`
	Paths      Paths          `yaml:"paths" json:"paths"`

	// Workbook and Metrics are optional output paths, relative to the root.
	Workbook string `yaml:"workbook,omitempty" json:"workbook,omitempty"`
	Metrics  string `yaml:"metrics,omitempty" json:"metrics,omitempty"`

	Publish publish.Config `yaml:"publish" json:"publish"`
}

// Paths locates the run's files. Relative paths are resolved against Root.
type Paths struct {
	Root     string `yaml:"-" json:"-"`
	Database string `yaml:"database" json:"database" validate:"required"`
	Queries  string `yaml:"queries" json:"queries" validate:"required"`
	Outputs  string `yaml:"outputs" json:"outputs" validate:"required"`
	Reports  string `yaml:"reports" json:"reports" validate:"required"`
}

// ReportFile is the report's name inside the reports directory.
const ReportFile = "report.md"

// Default returns the stock configuration rooted at the working directory.
func Default() Config {
	return Config{
		Generation: dataset.DefaultParams(),
		Paths: Paths{
			Root:     ".",
			Database: filepath.Join("data", "analytics.db"),
			Queries:  "queries",
			Outputs:  "outputs",
			Reports:  "reports",
		},
	}
}

// Resolve returns p joined to Root unless it is absolute or empty.
func (p Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Root, path)
}

// DatabasePath is the resolved store file.
func (p Paths) DatabasePath() string { return p.Resolve(p.Database) }

// QueriesDir is the resolved query definition directory.
func (p Paths) QueriesDir() string { return p.Resolve(p.Queries) }

// OutputsDir is the resolved artifact directory.
func (p Paths) OutputsDir() string { return p.Resolve(p.Outputs) }

// ReportsDir is the resolved report directory.
func (p Paths) ReportsDir() string { return p.Resolve(p.Reports) }

// ReportPath is the resolved report file.
func (p Paths) ReportPath() string { return filepath.Join(p.ReportsDir(), ReportFile) }

// DisplayReportPath is the report file as the user configured it.
func (p Paths) DisplayReportPath() string {
	return filepath.ToSlash(filepath.Join(p.Reports, ReportFile))
}
