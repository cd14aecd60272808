package services

import "errors"

// ValidationError marks bad caller input: empty trade lists where a result
// needs one, too few valid trades for a requested cluster count, or no
// recognized feature names. It is the only error class surfaced to callers;
// missing external data degrades to empty results instead.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func newValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

// IsValidationError reports whether err is a caller-input failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
