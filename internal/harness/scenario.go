package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one end-to-end run and what must hold after it.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Config is a YAML config file body, loaded the way --config loads one.
	Config string `yaml:"config,omitempty"`

	// Queries selects bundled query files by name. Nil installs all of them;
	// an empty list installs none.
	Queries []string `yaml:"queries"`

	Assertions []Assertion `yaml:"assertions"`
}

// Assertion is one check against a finished run.
type Assertion struct {
	Type     string `yaml:"type"`
	Table    string `yaml:"table,omitempty"`
	Artifact string `yaml:"artifact,omitempty"`
	Section  string `yaml:"section,omitempty"`
	Text     string `yaml:"text,omitempty"`
	Count    *int   `yaml:"count,omitempty"`
	Expect   *bool  `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTableRows      = "table_rows"
	AssertArtifactRows   = "artifact_rows"
	AssertReportContains = "report_contains"
	AssertReportSection  = "report_section"
	AssertDegenerate     = "degenerate"
)

// LoadScenario reads and validates a scenario file. Unknown keys are
// rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTableRows:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for table_rows", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: a non-negative count is required for table_rows", index)
		}
	case AssertArtifactRows:
		if a.Artifact == "" {
			return fmt.Errorf("assertions[%d]: artifact is required for artifact_rows", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: a non-negative count is required for artifact_rows", index)
		}
	case AssertReportContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for report_contains", index)
		}
	case AssertReportSection:
		if a.Section == "" {
			return fmt.Errorf("assertions[%d]: section is required for report_section", index)
		}
	case AssertDegenerate:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for degenerate", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
