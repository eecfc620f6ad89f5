// Command ecomkpi generates a synthetic e-commerce dataset, runs the KPI
// queries against it and writes the report.
package main

import (
	"os"

	"github.com/roach88/ecomkpi/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
