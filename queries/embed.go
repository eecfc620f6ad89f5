// Package queries holds the stock analytical query set. The files are read
// from disk at run time; the embedded copy seeds a fresh project on init.
package queries

import "embed"

// FS contains every bundled *.sql file at its root.
//
//go:embed *.sql
var FS embed.FS
