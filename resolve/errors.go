package resolve

import (
	"errors"
	"fmt"
)

// UnreadableError reports a location that could not be resolved to text.
// It is a per-document failure: the run records it and continues with the
// remaining documents.
type UnreadableError struct {
	Location string
	Err      error
}

// Error implements the error interface.
func (e *UnreadableError) Error() string {
	return fmt.Sprintf("unreadable location %q: %v", e.Location, e.Err)
}

// Unwrap returns the underlying cause.
func (e *UnreadableError) Unwrap() error {
	return e.Err
}

// IsUnreadable reports whether err is (or wraps) an UnreadableError.
func IsUnreadable(err error) bool {
	var ue *UnreadableError
	return errors.As(err, &ue)
}
