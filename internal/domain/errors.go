package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the rule services wraps exactly one of these,
// so callers can classify failures with errors.Is.
var (
	// ErrInvalidArgument indicates a malformed identifier, field value or query range.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates a uniqueness constraint would be violated.
	ErrAlreadyExists = errors.New("already exists")

	// ErrBusinessRule indicates a cross-entity rule would be violated.
	ErrBusinessRule = errors.New("business rule violation")
)

// Entity-specific not found errors. They wrap ErrNotFound.
var (
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrProjectNotFound = fmt.Errorf("project %w", ErrNotFound)
	ErrTaskNotFound    = fmt.Errorf("task %w", ErrNotFound)
)

// FieldError describes a single violated validation rule.
// The message names the entity, the field and the constraint, e.g.
// "task priority must be between 1 and 5".
type FieldError struct {
	Entity string
	Field  string
	Issue  string
	Kind   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s %s", e.Entity, e.Field, e.Issue)
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

func invalidField(entity, field, issue string) *FieldError {
	return &FieldError{Entity: entity, Field: field, Issue: issue, Kind: ErrInvalidArgument}
}

// InvalidArgument builds an ErrInvalidArgument-wrapped error with a formatted message.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// ValidateID rejects non-positive identifiers.
func ValidateID(entity string, id int64) error {
	if id <= 0 {
		return invalidField(entity, "ID", "must be positive")
	}
	return nil
}
