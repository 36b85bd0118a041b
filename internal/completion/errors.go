package completion

import (
	"errors"
	"fmt"
)

var (
	// ErrNotImplemented is returned when a placeholder action is asked
	// for matches.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnknownAction is returned for an action name outside the
	// declared vocabulary.
	ErrUnknownAction = errors.New("unknown action")
)

// UsageError reports a malformed invocation of a completion builtin.
type UsageError struct {
	msg string
}

func (e *UsageError) Error() string {
	return e.msg
}

// newUsageError creates a new error that the builtins report with exit status 2
func newUsageError(format string, args ...any) error {
	return &UsageError{msg: fmt.Sprintf(format, args...)}
}

// IsUsageError reports whether err is, or wraps, a *UsageError.
func IsUsageError(err error) bool {
	var uerr *UsageError
	return errors.As(err, &uerr)
}
