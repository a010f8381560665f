package harness

import (
	"slices"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/triplestream/internal/binding"
	"github.com/roach88/triplestream/internal/rdf"
)

// Snapshot renders solutions as canonical JSON for golden comparison:
//
//	{"count":N,"scenario_name":"...","solutions":[...]}
//
// Solutions are sorted by their canonical encoding so the snapshot does not
// depend on stream order.
func Snapshot(scenarioName string, solutions []binding.Bindings) ([]byte, error) {
	type encoded struct {
		key string
		obj map[string]any
	}
	enc := make([]encoded, len(solutions))
	for i, s := range solutions {
		obj := s.Canonical()
		data, err := rdf.MarshalCanonical(obj)
		if err != nil {
			return nil, err
		}
		enc[i] = encoded{key: string(data), obj: obj}
	}
	slices.SortFunc(enc, func(a, b encoded) int { return strings.Compare(a.key, b.key) })

	list := make([]any, len(enc))
	for i, e := range enc {
		list[i] = e.obj
	}
	return rdf.MarshalCanonical(map[string]any{
		"scenario_name": scenarioName,
		"count":         len(solutions),
		"solutions":     list,
	})
}

// RunWithGolden executes a scenario and compares its solutions against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the solutions don't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result.Solutions)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
