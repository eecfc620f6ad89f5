// Package query discovers SQL query definitions and runs them against the
// store, persisting each result set as a CSV artifact.
//
// The runner has no knowledge of what a query computes. Its only ordering
// guarantee is that definitions run, and are reported, in lexicographic
// file name order.
package query

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Ext is the file extension of a query definition.
const Ext = ".sql"

// Definition is one discovered query.
type Definition struct {
	// File is the base file name, e.g. "01_daily_kpis.sql".
	File string
	// SQL is the NFC-normalized, trimmed query text.
	SQL string
}

// Name is the artifact name: File without its extension.
func (d Definition) Name() string {
	return strings.TrimSuffix(d.File, Ext)
}

// Blank reports whether the definition has no query text.
func (d Definition) Blank() bool {
	return d.SQL == ""
}

// Artifact is the CSV file name the definition's result is written to.
func (d Definition) Artifact() string {
	return d.Name() + ".csv"
}

// Discover reads every *.sql file at the root of fsys, sorted by file name.
// Subdirectories are not descended into.
func Discover(fsys fs.FS) ([]Definition, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("discover queries: %w", err)
	}

	var defs []Definition
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != Ext {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("read query %s: %w", e.Name(), err)
		}
		defs = append(defs, Definition{
			File: e.Name(),
			SQL:  strings.TrimSpace(norm.NFC.String(string(data))),
		})
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].File < defs[j].File })
	return defs, nil
}
