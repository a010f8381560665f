package harness

import (
	"github.com/roach88/triplestream/internal/binding"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates every expectation matched.
	Pass bool `json:"pass"`

	// Solutions holds the evaluated solutions in stream order.
	Solutions []binding.Bindings `json:"-"`

	// Plan is the indented algebra tree of the compiled plan.
	Plan string `json:"plan,omitempty"`

	// Warnings are plan validation warnings.
	Warnings []string `json:"warnings,omitempty"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
