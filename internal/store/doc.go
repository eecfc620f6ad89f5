// Package store is the analytical store the pipeline loads generated tables
// into and runs queries against.
//
// It is a thin adapter over a SQLite file. Tables are replaced wholesale:
// loading a table drops any previous relation of the same name and recreates
// it with the declared column order and types, so loading the same tables twice
// leaves the same store state.
//
// # Database Configuration
//
//   - WAL mode: ad hoc readers can open the file while a run writes
//   - synchronous=NORMAL
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - one open connection: SQLite has a single writer
//
// Every failure is returned as a *Error naming the operation and the table
// or query involved.
package store
