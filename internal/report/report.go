// Package report turns query artifacts into the markdown run report.
//
// The report is best-effort: each optional section is backed by one
// conventionally named artifact and is left out when that artifact is
// missing, empty, lacks a required column or holds a value that does not
// parse. The title, recommendations, reproducibility notes and the list of
// executed queries are always rendered.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/ecomkpi/internal/dataset"
)

// Title is the first line of every report.
const Title = "# E-commerce KPIs, funnel, and retention"

var recommendations = []string{
	"1. Invest in the highest converting channel with better landing pages and lifecycle follow-ups.",
	"2. Improve checkout completion by segmenting funnel drop-off by channel (and device once added).",
	"3. Reduce delivery delays in the slowest bucket and monitor refund and cancel rate movement.",
}

// Input is everything a report is built from besides the artifacts.
type Input struct {
	// Dataset is the generated table collection. When nil the dataset
	// snapshot and the seed lines are left out.
	Dataset   *dataset.Dataset
	DatasetID string

	// Ran lists the query files that executed, in execution order.
	Ran []string

	// Display paths for the reproducibility section.
	Database   string
	QueriesDir string
	OutputsDir string

	Artifacts ArtifactSource
}

// Document is a rendered report.
type Document struct {
	Text string
	// Present and Absent partition the recognized artifact names by whether
	// their section was rendered.
	Present []string
	Absent  []string
}

// Build renders the report. It never fails.
func Build(in Input) *Document {
	doc := &Document{}
	var b strings.Builder

	b.WriteString(Title + "\n\n")
	b.WriteString("## Executive summary\n")
	fmt.Fprintf(&b, "This report is generated automatically from SQL outputs in `%s`.\n\n", displayDir(in.OutputsDir))

	for _, s := range sections {
		lines, ok := renderSection(in.Artifacts, s)
		if !ok {
			doc.Absent = append(doc.Absent, s.artifact)
			continue
		}
		doc.Present = append(doc.Present, s.artifact)
		writeBlock(&b, s.heading, lines)
	}

	if in.Dataset != nil {
		writeBlock(&b, "## Dataset snapshot", snapshotLines(in.Dataset))
	}

	writeBlock(&b, "## Recommendations", recommendations)

	repro := []string{
		fmt.Sprintf("- Database: `%s`", filepath.ToSlash(in.Database)),
		fmt.Sprintf("- SQL sources: `%s`", displayDir(in.QueriesDir)),
		fmt.Sprintf("- Output tables: `%s`", displayDir(in.OutputsDir)),
	}
	if in.Dataset != nil {
		repro = append(repro, fmt.Sprintf("- Seed: %d", in.Dataset.Params.Seed))
	}
	if in.DatasetID != "" {
		repro = append(repro, fmt.Sprintf("- Dataset id: `%s`", in.DatasetID))
	}
	writeBlock(&b, "## Reproducibility", repro)

	b.WriteString("## Queries executed\n")
	if len(in.Ran) == 0 {
		b.WriteString("- None\n")
	}
	for _, q := range in.Ran {
		fmt.Fprintf(&b, "- %s\n", q)
	}

	doc.Text = b.String()
	return doc
}

func renderSection(src ArtifactSource, s section) ([]string, bool) {
	if src == nil {
		return nil, false
	}
	f, ok := src.Load(s.artifact)
	if !ok || f.Empty() {
		return nil, false
	}
	if !f.Has(s.columns...) {
		slog.Debug("artifact missing columns", "artifact", s.artifact, "want", s.columns)
		return nil, false
	}
	lines, err := s.render(f)
	if err != nil {
		slog.Debug("artifact not renderable", "artifact", s.artifact, "error", err)
		return nil, false
	}
	return lines, true
}

func snapshotLines(d *dataset.Dataset) []string {
	st := d.Stats()
	lines := []string{
		fmt.Sprintf("- Customers: %d", st.Customers),
		fmt.Sprintf("- Sessions: %d", st.Sessions),
		fmt.Sprintf("- Events: %d", st.Events),
		fmt.Sprintf("- Orders: %d (one per purchasing session)", st.Orders),
	}
	if d.Degenerate && len(d.Purchasing) > 0 {
		lines = append(lines, fmt.Sprintf("- No session reached purchase; session %d was promoted", d.Purchasing[0]))
	}
	return lines
}

func writeBlock(b *strings.Builder, heading string, lines []string) {
	b.WriteString(heading + "\n")
	for _, l := range lines {
		b.WriteString(l + "\n")
	}
	b.WriteString("\n")
}

func displayDir(p string) string {
	p = filepath.ToSlash(p)
	if p == "" || strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

// WriteFile writes doc to path, replacing any previous report.
func WriteFile(path string, doc *Document) error {
	if err := os.WriteFile(path, []byte(doc.Text), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
