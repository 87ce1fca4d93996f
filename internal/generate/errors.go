package generate

import (
	"errors"
	"fmt"
)

// PreflightError represents a hard error detected before generation
// begins. Preflight errors abort the whole call; nothing is generated.
type PreflightError struct {
	Code    PreflightErrorCode
	Message string
}

// PreflightErrorCode categorizes preflight failures.
type PreflightErrorCode string

const (
	// ErrCodeNoFormulas indicates the algorithm defines no formulas.
	ErrCodeNoFormulas PreflightErrorCode = "NO_FORMULAS"

	// ErrCodeNoTaxonomyTarget indicates the logical mapping names
	// neither an existing taxonomy id nor a new-taxonomy name.
	ErrCodeNoTaxonomyTarget PreflightErrorCode = "NO_TAXONOMY_TARGET"

	// ErrCodeTaxonomyNotFound indicates the mapped taxonomy id does
	// not resolve in the caller's catalog.
	ErrCodeTaxonomyNotFound PreflightErrorCode = "TAXONOMY_NOT_FOUND"

	// ErrCodeInvalidAlgorithm indicates structural validation failed.
	ErrCodeInvalidAlgorithm PreflightErrorCode = "INVALID_ALGORITHM"

	// ErrCodeNoGeneration indicates the algorithm carries no token
	// generation config.
	ErrCodeNoGeneration PreflightErrorCode = "NO_GENERATION"
)

// Error implements the error interface.
func (e *PreflightError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsPreflightError reports whether err aborted generation before any
// token was produced. Uses errors.As to handle wrapped errors.
func IsPreflightError(err error) bool {
	var pe *PreflightError
	return errors.As(err, &pe)
}

// NewPreflightError creates a PreflightError with the given code.
func NewPreflightError(code PreflightErrorCode, format string, args ...any) *PreflightError {
	return &PreflightError{Code: code, Message: fmt.Sprintf(format, args...)}
}
