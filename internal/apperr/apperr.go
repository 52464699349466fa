// Package apperr defines the error taxonomy shared by services and handlers.
// Sentinel errors are matched with errors.Is at the HTTP boundary and mapped
// to status codes there; services never write HTTP statuses themselves.
package apperr

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrUnauthenticated means the request carries no usable identity
	// (missing, malformed, expired or forged token).
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means a valid identity lacks the required role or does
	// not own the target resource.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means a resource id did not resolve to a row.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness constraint was violated (duplicate email).
	ErrConflict = errors.New("conflict")

	// ErrStore wraps unexpected persistence failures not otherwise classified.
	ErrStore = errors.New("store failure")
)

// ValidationError carries per-field violations detected before any store
// access. It unwraps to nothing; handlers match it with errors.As.
type ValidationError struct {
	Violations map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Violations)
}

// Validation builds a ValidationError from a violations map.
func Validation(violations map[string]string) error {
	return &ValidationError{Violations: violations}
}

// FromStore reclassifies a gorm error: record-not-found becomes ErrNotFound,
// anything else wraps into ErrStore with the original message preserved.
func FromStore(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrStore, err)
}
