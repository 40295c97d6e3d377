// Package apperrors defines the error kinds the core returns to its callers.
// The HTTP layer maps each kind to a transport status code; the core itself
// never inspects status codes. Callers match kinds with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: a referenced task/topic/status/user id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: caller is authenticated but outside the target's scope.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidReference: a supplied foreign id does not resolve.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrInvalidField: a field fails its own constraint at the store boundary.
	ErrInvalidField = errors.New("invalid field")
	// ErrUnknownStatus: a transition names a status code not in the catalog.
	ErrUnknownStatus = errors.New("unknown status")
	// ErrNoData: an analytics result set is empty, as opposed to computed zero.
	ErrNoData = errors.New("no data")
	// ErrConfiguration: a required catalog invariant is violated.
	ErrConfiguration = errors.New("configuration error")
	// ErrConflict: a uniqueness constraint is violated.
	ErrConflict = errors.New("conflict")
)

// Wrap attaches context to a kind while keeping it matchable with errors.Is.
func Wrap(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{kind}, args...)...)
}
