package ops

import (
	"errors"
	"fmt"
)

// ValidationError reports caller input rejected before any git process starts.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Op == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func invalid(op, reason string) error {
	return &ValidationError{Op: op, Reason: reason}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
