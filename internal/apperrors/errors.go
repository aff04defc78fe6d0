package apperrors

import (
	"errors"
	"fmt"
)

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrStateConflict indicates an operation that is not allowed in the current
// shift state, such as opening while a shift is already open.
var ErrStateConflict = errors.New("state conflict")

// ErrResolution indicates a reference to an account or target that does not exist.
var ErrResolution = errors.New("unresolved target")

// ErrReconciliation indicates that declared balances differ from the system
// balances and the operator has not acknowledged the difference.
var ErrReconciliation = errors.New("reconciliation warning")

// Error is a classified error. Kind is one of the sentinels above, so callers
// can branch with errors.Is.
type Error struct {
	Kind    error
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Kind }

// Validation returns an ErrValidation error naming the offending field.
func Validation(field, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// StateConflict returns an ErrStateConflict error.
func StateConflict(format string, args ...any) error {
	return &Error{Kind: ErrStateConflict, Message: fmt.Sprintf(format, args...)}
}

// Resolution returns an ErrResolution error for the given target.
func Resolution(field, target string) error {
	return &Error{Kind: ErrResolution, Field: field, Message: fmt.Sprintf("unknown target %q", target)}
}

// KindOf returns the sentinel kind of err, or nil if err is not classified.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrStateConflict, ErrResolution, ErrReconciliation} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
