package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Backend selects the dataset: "memory" (default) or "sqlite".
	Backend string `yaml:"backend,omitempty"`

	// Data lists triples in term notation.
	Data [][]string `yaml:"data,omitempty"`

	// DataFile is a YAML triple file, used instead of Data.
	DataFile string `yaml:"data_file,omitempty"`

	// Plan is an inline CUE document with a top-level query field.
	Plan string `yaml:"plan,omitempty"`

	// PlanFile is a CUE plan document, used instead of Plan.
	PlanFile string `yaml:"plan_file,omitempty"`

	// Limit caps the number of solutions pulled. Zero pulls all of them.
	Limit int `yaml:"limit,omitempty"`

	// Windows overrides the join window defaults.
	Windows *Windows `yaml:"windows,omitempty"`

	// Expect lists the expectations checked after evaluation.
	Expect Expect `yaml:"expect"`
}

// Windows configures join windows for a scenario. Zero fields keep the
// defaults.
type Windows struct {
	LHS int `yaml:"lhs,omitempty"`
	RHS int `yaml:"rhs,omitempty"`
	Max int `yaml:"max,omitempty"`
}

// Solution is an expected solution: variable name to term notation.
type Solution map[string]string

// Expect holds scenario expectations. At least one must be set.
type Expect struct {
	Count     *int       `yaml:"count,omitempty"`
	Solutions []Solution `yaml:"solutions,omitempty"`
	Contains  []Solution `yaml:"contains,omitempty"`
	Error     string     `yaml:"error,omitempty"`
}

// Backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// LoadScenario reads and parses a scenario YAML file.
// data_file and plan_file are resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	if scenario.DataFile != "" && !filepath.IsAbs(scenario.DataFile) {
		scenario.DataFile = filepath.Join(base, scenario.DataFile)
	}
	if scenario.PlanFile != "" && !filepath.IsAbs(scenario.PlanFile) {
		scenario.PlanFile = filepath.Join(base, scenario.PlanFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	slices.Sort(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch s.Backend {
	case "", BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q, must be %q or %q", s.Backend, BackendMemory, BackendSQLite)
	}

	if s.Data != nil && s.DataFile != "" {
		return fmt.Errorf("data and data_file are mutually exclusive")
	}
	if s.DataFile != "" {
		if _, err := os.Stat(s.DataFile); os.IsNotExist(err) {
			return fmt.Errorf("data file not found: %s", s.DataFile)
		}
	}

	if (s.Plan == "") == (s.PlanFile == "") {
		return fmt.Errorf("exactly one of plan and plan_file is required")
	}
	if s.PlanFile != "" {
		if _, err := os.Stat(s.PlanFile); os.IsNotExist(err) {
			return fmt.Errorf("plan file not found: %s", s.PlanFile)
		}
	}

	if s.Limit < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", s.Limit)
	}

	if w := s.Windows; w != nil && (w.LHS < 0 || w.RHS < 0 || w.Max < 0) {
		return fmt.Errorf("windows must be non-negative")
	}

	e := s.Expect
	if e.Count == nil && e.Solutions == nil && e.Contains == nil && e.Error == "" {
		return fmt.Errorf("expect requires at least one of count, solutions, contains, error")
	}
	if e.Count != nil && *e.Count < 0 {
		return fmt.Errorf("expect.count must be non-negative")
	}
	if e.Error != "" && (e.Count != nil || e.Solutions != nil || e.Contains != nil) {
		return fmt.Errorf("expect.error cannot be combined with solution expectations")
	}

	return nil
}
