// Package harness runs end-to-end pipeline scenarios described in YAML.
//
// A scenario names a configuration, an optional subset of the bundled
// queries and a list of assertions about the finished run. Each scenario
// runs in its own project directory, through the same config loading and
// pipeline code the CLI uses.
//
// # Scenario Format
//
//	name: degenerate_funnel
//	description: "No session purchases; the lowest session is promoted"
//	config: |
//	  generation:
//	    seed: 7
//	    funnel:
//	      add_to_cart: 0
//	queries:            # omitted: every bundled query; []: none
//	  - 02_funnel_counts.sql
//	assertions:
//	  - type: table_rows
//	    table: orders
//	    count: 1
//	  - type: degenerate
//	    expect: true
//
// # Assertion Types
//
//   - table_rows: the store table has exactly count rows
//   - artifact_rows: the CSV artifact has exactly count data rows
//   - report_contains: the report text contains text
//   - report_section: the section backed by artifact section is rendered
//     (expect defaults to true)
//   - degenerate: the degenerate fallback did or did not apply
package harness
