package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed or
	// outside the institution's domain.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrInvalidStatusTransition is returned when a status change is not
	// allowed by the entity's state machine.
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrRentDuration is returned when rental duration fields are missing for
	// a rent listing.
	ErrRentDuration = errors.New("rent listings require rent_duration_value and rent_duration_unit")

	// ErrUnauthorized is returned when no authenticated identity is available.
	ErrUnauthorized = errors.New("unauthorized operation")

	// ErrNotOwner is returned when an authenticated caller tries to mutate a
	// row owned by another user.
	ErrNotOwner = errors.New("resource is owned by another user")
)

// ValidationError describes a single field that failed validation.
// It wraps a sentinel so callers can still match with errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap exposes ErrValidation together with the wrapped sentinel.
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil || e.Err == ErrValidation {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
