package treatment

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no record matches the given identifier.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidTransition is returned when an operation is attempted from
	// the wrong partition, e.g. deleting a record that was never discharged.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidArgument is returned for structurally valid requests whose
	// values are out of range, e.g. a non-positive extension.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ValidationReason identifies which rule a rejected input broke.
type ValidationReason string

const (
	MissingAuthor        ValidationReason = "missing_author"
	MissingContent       ValidationReason = "missing_content"
	ContentTooShort      ValidationReason = "content_too_short"
	MissingRequiredField ValidationReason = "missing_required_field"
)

// ValidationError reports a rejected input field. The caller is expected to
// prompt for correction; nothing has been persisted.
type ValidationError struct {
	Field  string
	Reason ValidationReason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func validationErr(field string, reason ValidationReason) error {
	return &ValidationError{Field: field, Reason: reason}
}
