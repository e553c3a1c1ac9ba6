package models

import "errors"

// Sentinel errors shared across stores, workflow, and handlers. Handlers
// map these to HTTP statuses; everything else is treated as an internal
// storage failure.
var (
	// ErrNotFound means a theme, template, or version does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a duplicate composite key on creation, or a
	// concurrent write detected through the row version check. The caller
	// may retry.
	ErrConflict = errors.New("conflict")

	// ErrNothingToPublish means publish was called on a template whose
	// draft content is empty.
	ErrNothingToPublish = errors.New("nothing to publish")

	// ErrVersionNotFound means a rollback index is out of range.
	ErrVersionNotFound = errors.New("version not found")
)

// ValidationError rejects malformed input. The message is safe to return
// to the caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validation builds a ValidationError from a plain message.
func Validation(message string) error {
	return &ValidationError{Message: message}
}
