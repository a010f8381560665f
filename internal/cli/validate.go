package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/triplestream/internal/plan"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Plan     string   `json:"plan,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <plan.cue>",
		Short: "Compile and validate a plan without evaluating it",
		Long: `Compile a CUE plan document and check it for structural problems.

Errors (exit 1) make the plan unbuildable: joins without join variables,
join variables neither side binds, bad windows or slices. Warnings flag
legal but suspicious plans such as cross products.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, planPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	node, err := LoadPlan(planPath)
	if err != nil {
		details := map[string]any{"file": planPath}
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Line() > 0 {
			details["line"] = loadErr.Line()
		}
		code := loadErrorCode(err)
		if code == ErrCodeCompileFailed {
			return formatter.Fail(WrapExitError(ExitFailure, code, "plan does not compile", err), details)
		}
		return formatter.Fail(WrapExitError(ExitCommandError, code, "failed to load plan", err), details)
	}

	res := plan.Validate(node)
	result := ValidationResult{
		Valid:    res.Valid,
		Errors:   res.Errors,
		Warnings: res.Warnings,
		Plan:     plan.Describe(node),
	}

	if opts.Format == "json" {
		if err := outputValidateJSON(formatter.Writer, result); err != nil {
			return err
		}
	} else {
		outputValidateText(formatter, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, ErrCodeInvalidPlan, fmt.Sprintf("plan has %d error(s)", len(result.Errors)))
	}
	return nil
}

func outputValidateJSON(w io.Writer, result ValidationResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if !result.Valid {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeInvalidPlan,
			Message: fmt.Sprintf("plan has %d error(s)", len(result.Errors)),
			Details: result.Errors,
		}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

func outputValidateText(f *OutputFormatter, result ValidationResult) {
	w := f.Writer
	for _, e := range result.Errors {
		fmt.Fprintf(w, "✗ %s\n", e)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "! %s\n", warning)
	}
	if result.Valid {
		fmt.Fprintln(w, "✓ Plan is valid")
	}
	f.VerboseLog("%s", result.Plan)
}
