package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // plan rejected, evaluation failed or a scenario failed
	ExitCommandError = 2 // bad flags or paths, dataset unavailable
)

// Error codes carried by ExitError and reported in JSON responses.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed
	ErrCodeCompileFailed = "E010" // Plan document does not compile
	ErrCodeInvalidPlan   = "E011" // Plan fails validation or construction
	ErrCodeDataset       = "E020" // Dataset could not be opened or loaded
	ErrCodeEvaluation    = "E021" // Evaluation failed mid-stream
	ErrCodeTestFailed    = "E030" // One or more scenarios failed
	ErrCodeUsage         = "E040" // Invalid flag value or combination
)

// ExitError is the error a command returns: Exit selects the process exit
// code and Code the error code shown to the user.
type ExitError struct {
	Exit    int
	Code    string
	Message string
	Err     error // optional cause
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates an ExitError without a cause.
func NewExitError(exit int, code, message string) *ExitError {
	return &ExitError{Exit: exit, Code: code, Message: message}
}

// WrapExitError creates an ExitError caused by err.
func WrapExitError(exit int, code, message string, err error) *ExitError {
	return &ExitError{Exit: exit, Code: code, Message: message, Err: err}
}

// GetExitCode maps err to a process exit code. Errors that are not
// ExitErrors, such as cobra flag errors, exit with ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Exit
	}
	return ExitFailure
}

// GetErrorCode returns the error code carried by err, or ErrCodeGeneric.
func GetErrorCode(err error) string {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code != "" {
		return exitErr.Code
	}
	return loadErrorCode(err)
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status  string    `json:"status"` // "ok" or "error"
	Data    any       `json:"data,omitempty"`
	Error   *CLIError `json:"error,omitempty"`
	TraceID string    `json:"trace_id,omitempty"` // query_id of the run's log lines
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter writes command results as text or as a JSON CLIResponse.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; defaults to Writer
	Verbose   bool
	TraceID   string // attached to JSON responses when set
}

// Success writes a successful result.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error writes a failure. Details are only shown in text mode when
// verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports e and returns it, for use as a command's final statement.
func (f *OutputFormatter) Fail(e *ExitError, details any) error {
	_ = f.Error(e.Code, e.Error(), details)
	return e
}

// VerboseLog writes a diagnostic line when verbose. Diagnostics go to
// ErrWriter so JSON on Writer stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	resp.TraceID = f.TraceID
	return json.NewEncoder(f.Writer).Encode(resp)
}
