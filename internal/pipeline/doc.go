// Package pipeline sequences a run: generate, load, query, report and the
// optional export, metrics and publish stages.
//
// Stages run strictly one after another. The store is opened once per run
// and closed on every exit path. A fatal failure is returned as a
// *StageError naming the stage; no later stage runs after it.
package pipeline
