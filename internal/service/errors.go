package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrEmptyImport indicates an import request carried no records.
	// API layer should map this to HTTP 400 Bad Request.
	ErrEmptyImport = errors.New("nothing to import")
)

// EnrollmentServiceError is a custom error type for enrollment service errors.
type EnrollmentServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for EnrollmentServiceError.
func (e *EnrollmentServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("enrollment service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("enrollment service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *EnrollmentServiceError) Unwrap() error {
	return e.Err
}

// NewEnrollmentServiceError creates a new EnrollmentServiceError.
func NewEnrollmentServiceError(operation, message string, err error) *EnrollmentServiceError {
	return &EnrollmentServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// RecommendationServiceError is a custom error type for recommendation service errors.
type RecommendationServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for RecommendationServiceError.
func (e *RecommendationServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recommendation service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("recommendation service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *RecommendationServiceError) Unwrap() error {
	return e.Err
}

// NewRecommendationServiceError creates a new RecommendationServiceError.
func NewRecommendationServiceError(operation, message string, err error) *RecommendationServiceError {
	return &RecommendationServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
