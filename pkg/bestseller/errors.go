package bestseller

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned by Snapshot when the capability secret is
// missing or wrong on either side. No work happens after this check fails.
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError rejects malformed query input before any I/O. It is the
// only condition the query path surfaces as a hard error; everything else
// degrades to stale-then-empty.
type ValidationError struct {
	Field string
	Msg   string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
