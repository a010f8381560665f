package eval

import (
	"errors"
	"fmt"
)

// ConstructionError reports an invalid block configuration. Blocks validate
// their inputs when constructed so evaluation never fails for structural
// reasons.
type ConstructionError struct {
	// Code identifies the error category.
	Code ConstructionErrorCode

	// Block names the block kind being constructed (e.g. "join").
	Block string

	// Message is a human-readable description.
	Message string
}

// ConstructionErrorCode categorizes construction errors.
type ConstructionErrorCode string

const (
	// ErrCodeNilDataset indicates a pattern block without a dataset.
	ErrCodeNilDataset ConstructionErrorCode = "NIL_DATASET"

	// ErrCodeNilBlock indicates a missing child block.
	ErrCodeNilBlock ConstructionErrorCode = "NIL_BLOCK"

	// ErrCodeInvalidPattern indicates a triple pattern with an empty position.
	ErrCodeInvalidPattern ConstructionErrorCode = "INVALID_PATTERN"

	// ErrCodeNoJoinVariables indicates a join with an empty join-variable set.
	ErrCodeNoJoinVariables ConstructionErrorCode = "NO_JOIN_VARIABLES"

	// ErrCodeInvalidWindow indicates a non-positive or inconsistent window size.
	ErrCodeInvalidWindow ConstructionErrorCode = "INVALID_WINDOW"

	// ErrCodeInvalidSlice indicates a negative offset or limit.
	ErrCodeInvalidSlice ConstructionErrorCode = "INVALID_SLICE"

	// ErrCodeNilPredicate indicates a filter without a predicate.
	ErrCodeNilPredicate ConstructionErrorCode = "NIL_PREDICATE"
)

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	return fmt.Sprintf("%s: %s block: %s", e.Code, e.Block, e.Message)
}

// IsConstructionError reports whether err is a ConstructionError with the
// given code. An empty code matches any construction error.
// Uses errors.As to handle wrapped errors.
func IsConstructionError(err error, code ConstructionErrorCode) bool {
	var ce *ConstructionError
	if errors.As(err, &ce) {
		return code == "" || ce.Code == code
	}
	return false
}

func constructionErr(code ConstructionErrorCode, block, format string, args ...any) *ConstructionError {
	return &ConstructionError{Code: code, Block: block, Message: fmt.Sprintf(format, args...)}
}
