// Package errorspkg provides common app errors.
//
// Errors are grouped into categories. A specific error created with New keeps its
// own message but reports its category through errors.Is, so the delivery layer
// can map whole categories to status codes.
package errorspkg

import "errors"

// Error categories.
var (
	// ErrValidation indicates malformed, missing or illegal input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound indicates that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientFunds indicates that a business balance rule was violated.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrConflict indicates that the request clashes with an earlier one.
	ErrConflict = errors.New("conflict")
	// ErrStorage indicates an infrastructure fault. Nothing was applied and the
	// request may be retried.
	ErrStorage = errors.New("storage unavailable, retry later")
	// ErrInternal indicates internal server error.
	ErrInternal = errors.New("internal")
)

// Stable error codes returned to API clients.
const (
	CodeValidation          = "validation_error"
	CodeNotFound            = "not_found"
	CodeInsufficientFunds   = "insufficient_funds"
	CodeIdempotencyConflict = "idempotency_conflict"
	CodeStorage             = "storage_error"
	CodeInternal            = "internal_error"
)

type categorized struct {
	category error
	msg      string
}

func (e *categorized) Error() string { return e.msg }

func (e *categorized) Unwrap() error { return e.category }

// New returns an error with the given message that belongs to the given category.
func New(category error, msg string) error {
	return &categorized{category: category, msg: msg}
}

// Code returns the stable client facing code of err's category.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ErrConflict):
		return CodeIdempotencyConflict
	case errors.Is(err, ErrStorage):
		return CodeStorage
	default:
		return CodeInternal
	}
}
