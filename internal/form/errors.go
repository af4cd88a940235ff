package form

import "errors"

// Validation failure kinds. Match with errors.Is against a *FieldError.
var (
	ErrMissingValue  = errors.New("missing required value")
	ErrInvalidFormat = errors.New("invalid format")
)

// FieldError is a failed validation for a single field. Error returns the
// user-facing message.
type FieldError struct {
	Field   FieldName
	Message string
	Err     error // ErrMissingValue or ErrInvalidFormat.
}

func (e *FieldError) Error() string {
	return e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
