package pipeline

import "fmt"

// Stage names, as they appear in errors, logs and metrics.
const (
	StageSetup    = "setup"
	StageGenerate = "generate"
	StageVerify   = "verify"
	StageLoad     = "load"
	StageQuery    = "query"
	StageReport   = "report"
	StageExport   = "export"
	StageMetrics  = "metrics"
	StagePublish  = "publish"
)

// StageError is a fatal failure of one pipeline stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
