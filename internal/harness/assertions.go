package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/triplestream/internal/binding"
	"github.com/roach88/triplestream/internal/rdf"
)

// AssertionError is returned when an expectation fails.
// It includes the produced solutions to help debug the failure.
type AssertionError struct {
	Type      string             // Expectation kind for categorization
	Expected  string             // Human-readable expected outcome
	Actual    string             // Human-readable actual outcome
	Solutions []binding.Bindings // Produced solutions for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nSolutions:\n")
	for i, s := range e.Solutions {
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, s)
	}

	return buf.String()
}

// EvaluateExpectations checks solutions against expect.
// Returns a slice of error messages for failed expectations.
func EvaluateExpectations(solutions []binding.Bindings, expect Expect) []string {
	var errors []string

	if expect.Count != nil {
		if err := assertCount(solutions, *expect.Count); err != nil {
			errors = append(errors, err.Error())
		}
	}
	if expect.Solutions != nil {
		if err := assertSolutions(solutions, expect.Solutions); err != nil {
			errors = append(errors, err.Error())
		}
	}
	for i, want := range expect.Contains {
		if err := assertContains(solutions, want); err != nil {
			errors = append(errors, fmt.Sprintf("contains[%d]: %v", i, err))
		}
	}

	return errors
}

func assertCount(solutions []binding.Bindings, want int) error {
	if len(solutions) == want {
		return nil
	}
	return &AssertionError{
		Type:      "count",
		Expected:  fmt.Sprintf("%d solutions", want),
		Actual:    fmt.Sprintf("%d solutions", len(solutions)),
		Solutions: solutions,
	}
}

// assertSolutions compares as multisets; order is ignored.
func assertSolutions(solutions []binding.Bindings, want []Solution) error {
	expected := make([]string, 0, len(want))
	for i, w := range want {
		b, err := w.Bindings()
		if err != nil {
			return fmt.Errorf("solutions[%d]: %w", i, err)
		}
		expected = append(expected, b.String())
	}
	actual := make([]string, len(solutions))
	for i, s := range solutions {
		actual[i] = s.String()
	}
	slices.Sort(expected)
	slices.Sort(actual)

	if slices.Equal(expected, actual) {
		return nil
	}
	return &AssertionError{
		Type:      "solutions",
		Expected:  strings.Join(expected, " "),
		Actual:    strings.Join(actual, " "),
		Solutions: solutions,
	}
}

func assertContains(solutions []binding.Bindings, want Solution) error {
	b, err := want.Bindings()
	if err != nil {
		return err
	}
	for _, s := range solutions {
		if s.Equal(b) {
			return nil
		}
	}
	return &AssertionError{
		Type:      "contains",
		Expected:  b.String(),
		Actual:    "not found",
		Solutions: solutions,
	}
}

// Bindings parses the expected solution. Variable names may carry a
// leading '?'.
func (s Solution) Bindings() (binding.Bindings, error) {
	pairs := make([]binding.Pair, 0, len(s))
	for _, name := range rdf.SortedKeys(s) {
		t, err := rdf.ParseTerm(s[name])
		if err != nil {
			return binding.Bindings{}, fmt.Errorf("?%s: %w", strings.TrimPrefix(name, "?"), err)
		}
		pairs = append(pairs, binding.P(strings.TrimPrefix(name, "?"), t))
	}
	return binding.From(pairs...)
}
