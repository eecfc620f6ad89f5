package harness

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/ecomkpi/internal/store"
	"github.com/roach88/ecomkpi/internal/tabular"
)

// AssertionError is one failed assertion.
type AssertionError struct {
	Scenario string
	Index    int
	Type     string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: assertions[%d] %s failed\n  Expected: %s\n  Actual: %s",
		e.Scenario, e.Index, e.Type, e.Expected, e.Actual)
}

// Check evaluates every assertion of sc against res and joins the failures.
func Check(ctx context.Context, res *Result, sc *Scenario) error {
	st, err := store.Open(res.Config.Paths.DatabasePath())
	if err != nil {
		return err
	}
	defer st.Close()

	var errs []error
	for i, a := range sc.Assertions {
		expected, actual, ok, err := evaluate(ctx, st, res, a)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: assertions[%d] %s: %w", sc.Name, i, a.Type, err))
			continue
		}
		if !ok {
			errs = append(errs, &AssertionError{
				Scenario: sc.Name,
				Index:    i,
				Type:     a.Type,
				Expected: expected,
				Actual:   actual,
			})
		}
	}
	return errors.Join(errs...)
}

func evaluate(ctx context.Context, st *store.Store, res *Result, a Assertion) (expected, actual string, ok bool, err error) {
	switch a.Type {
	case AssertTableRows:
		n, err := st.Count(ctx, a.Table)
		if err != nil {
			return "", "", false, err
		}
		return fmt.Sprintf("%s has %d rows", a.Table, *a.Count), fmt.Sprintf("%d rows", n), n == int64(*a.Count), nil

	case AssertArtifactRows:
		frame, err := tabular.ReadCSVFile(filepath.Join(res.Config.Paths.OutputsDir(), a.Artifact+".csv"))
		if err != nil {
			return "", "", false, err
		}
		return fmt.Sprintf("%s has %d rows", a.Artifact, *a.Count), fmt.Sprintf("%d rows", frame.Len()), frame.Len() == *a.Count, nil

	case AssertReportContains:
		return fmt.Sprintf("report contains %q", a.Text), "not found", strings.Contains(res.Run.Report.Text, a.Text), nil

	case AssertReportSection:
		want := a.Expect == nil || *a.Expect
		got := slices.Contains(res.Run.Report.Present, a.Section)
		return fmt.Sprintf("section %s rendered=%t", a.Section, want), fmt.Sprintf("rendered=%t", got), want == got, nil

	case AssertDegenerate:
		got := res.Run.Dataset.Degenerate
		return fmt.Sprintf("degenerate=%t", *a.Expect), fmt.Sprintf("degenerate=%t", got), got == *a.Expect, nil

	default:
		return "", "", false, fmt.Errorf("unknown assertion type %q", a.Type)
	}
}
