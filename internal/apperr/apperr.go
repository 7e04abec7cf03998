// Package apperr holds the error taxonomy shared by the catalog, the
// services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrQueryFailed reports a network or backend error during a read.
	ErrQueryFailed = errors.New("query failed")
	// ErrWriteFailed reports a network or backend error during create, update or delete.
	ErrWriteFailed = errors.New("write failed")
	// ErrUnauthenticated reports an operation that needs a user identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrValidationFailed reports a caller-side constraint violation.
	// It is always returned before any network call.
	ErrValidationFailed   = errors.New("validation failed")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("rate limit exceeded")
	// ErrConflict reports a request that overlaps one still in flight.
	ErrConflict = errors.New("conflicting request in progress")
)

// Query wraps err as a failed read of op.
func Query(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrQueryFailed, err)
}

// Write wraps err as a failed write of op.
func Write(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrWriteFailed, err)
}

// Validation builds a validation error with a human readable reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}
