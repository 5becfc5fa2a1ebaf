// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyStudentID is returned when a student identifier is blank.
	ErrEmptyStudentID = errors.New("student ID cannot be empty")

	// ErrEmptyCourseCode is returned when a course code is blank.
	ErrEmptyCourseCode = errors.New("course code cannot be empty")

	// ErrInvalidCapacity is returned when a seat count below one is supplied.
	ErrInvalidCapacity = errors.New("capacity must be at least 1")

	// ErrInvalidEnrollmentDate is returned when an enrollment has no date.
	ErrInvalidEnrollmentDate = errors.New("enrollment date cannot be zero")

	// ErrInvalidUserType is returned when a usage log entry names an unknown user type.
	ErrInvalidUserType = errors.New("invalid user type")

	// ErrEmptyAction is returned when a usage log entry has no action.
	ErrEmptyAction = errors.New("action cannot be empty")
)

// ValidationError names the field that failed validation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError wrapping err.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
