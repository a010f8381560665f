package harness

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/triplestream/internal/binding"
	"github.com/roach88/triplestream/internal/compiler"
	"github.com/roach88/triplestream/internal/dataset"
	"github.com/roach88/triplestream/internal/eval"
	"github.com/roach88/triplestream/internal/plan"
	"github.com/roach88/triplestream/internal/rdf"
	"github.com/roach88/triplestream/internal/store"
)

// Run executes a scenario and returns the result.
//
// Each scenario gets a fresh dataset: an in-memory one, or a SQLite store
// in a temporary directory removed afterwards.
//
// Execution flow:
//  1. Load triples from data or data_file
//  2. Open the backend and insert the triples
//  3. Compile, validate and build the plan
//  4. Evaluate from the empty seed, up to limit solutions
//  5. Check expectations
//
// Infrastructure failures are returned as errors. Expectation failures are
// recorded in the result.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()
	slog.Debug("running scenario", "name", scenario.Name, "backend", backendName(scenario))

	triples, err := loadTriples(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load triples: %w", err)
	}

	ds, cleanup, err := openDataset(ctx, scenario, triples)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s dataset: %w", backendName(scenario), err)
	}
	defer cleanup()

	result := NewResult()
	block, err := buildPlan(scenario, ds, result)
	if want := scenario.Expect.Error; want != "" {
		switch {
		case err == nil:
			result.AddError(fmt.Sprintf("expected plan error containing %q, plan built successfully", want))
		case !strings.Contains(err.Error(), want):
			result.AddError(fmt.Sprintf("expected plan error containing %q, got: %v", want, err))
		}
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	limit := -1
	if scenario.Limit > 0 {
		limit = scenario.Limit
	}
	solutions, err := eval.Collect(block.Evaluate(ctx, binding.Empty()), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate plan: %w", err)
	}
	result.Solutions = solutions

	for _, msg := range EvaluateExpectations(solutions, scenario.Expect) {
		result.AddError(msg)
	}
	return result, nil
}

func backendName(s *Scenario) string {
	if s.Backend == "" {
		return BackendMemory
	}
	return s.Backend
}

func loadTriples(s *Scenario) ([]rdf.Triple, error) {
	if s.DataFile != "" {
		return dataset.LoadYAMLFile(s.DataFile)
	}
	return dataset.ParseRows(s.Data)
}

func openDataset(ctx context.Context, s *Scenario, triples []rdf.Triple) (dataset.Dataset, func(), error) {
	if backendName(s) == BackendMemory {
		return dataset.NewMemory(triples...), func() {}, nil
	}

	dir, err := os.MkdirTemp("", "triplestream-harness-")
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(filepath.Join(dir, "scenario.db"))
	if err != nil {
		os.RemoveAll(dir)
		return nil, nil, err
	}
	cleanup := func() {
		st.Close()
		os.RemoveAll(dir)
	}
	if _, err := st.Insert(ctx, triples...); err != nil {
		cleanup()
		return nil, nil, err
	}
	return st, cleanup, nil
}

// buildPlan compiles and builds the scenario plan, recording the rendered
// plan and validation warnings in result.
func buildPlan(s *Scenario, ds dataset.Dataset, result *Result) (eval.Block, error) {
	name, src := s.Name+".cue", []byte(s.Plan)
	if s.PlanFile != "" {
		data, err := os.ReadFile(s.PlanFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read plan file: %w", err)
		}
		name, src = s.PlanFile, data
	}

	node, err := compiler.CompileSource(name, src)
	if err != nil {
		return nil, fmt.Errorf("failed to compile plan: %w", err)
	}
	result.Plan = plan.Describe(node)
	result.Warnings = plan.Validate(node).Warnings

	var opts []plan.BuildOption
	if w := s.Windows; w != nil {
		lhs, rhs := eval.DefaultWindow, eval.DefaultWindow
		if w.LHS > 0 {
			lhs = w.LHS
		}
		if w.RHS > 0 {
			rhs = w.RHS
		}
		opts = append(opts, plan.WithDefaultWindows(lhs, rhs))
		if w.Max > 0 {
			opts = append(opts, plan.WithMaxWindow(w.Max))
		}
	}

	block, err := plan.Build(node, ds, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build plan: %w", err)
	}
	return block, nil
}
