package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/campuslab/elective-api/internal/api/shared"
	"github.com/campuslab/elective-api/internal/domain"
	"github.com/campuslab/elective-api/internal/recommend"
	"github.com/campuslab/elective-api/internal/service"
	"github.com/campuslab/elective-api/internal/service/auth"
	"github.com/campuslab/elective-api/internal/store"
	"github.com/go-playground/validator/v10"
)

// isBadRequest reports whether err was caused by invalid client input.
func isBadRequest(err error) bool {
	var validationErrs validator.ValidationErrors
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrEmptyStudentID) ||
		errors.Is(err, domain.ErrEmptyCourseCode) ||
		errors.Is(err, domain.ErrInvalidCapacity) ||
		errors.Is(err, domain.ErrInvalidEnrollmentDate) ||
		errors.Is(err, store.ErrInvalidEntity) ||
		errors.Is(err, recommend.ErrDataFormat) ||
		errors.Is(err, service.ErrEmptyImport) ||
		errors.As(err, &validationErrs)
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, auth.ErrAdminLoginDisabled):
		return http.StatusForbidden

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case isBadRequest(err):
		return http.StatusBadRequest

	// Contention that outlived the retries; the client may try again.
	case errors.Is(err, store.ErrTransactionFailed):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, auth.ErrAdminLoginDisabled):
		return "Administrator login is disabled"

	case errors.Is(err, store.ErrEnrollmentNotFound):
		return "Enrollment not found"
	case errors.Is(err, store.ErrCourseNotFound):
		return "Course not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, domain.ErrEmptyStudentID):
		return "Student ID is required"
	case errors.Is(err, domain.ErrEmptyCourseCode):
		return "Course code is required"
	case errors.Is(err, domain.ErrInvalidCapacity):
		return "Total seats must be at least 1"
	case errors.Is(err, recommend.ErrDataFormat):
		return dataFormatMessage(err)
	case errors.Is(err, service.ErrEmptyImport):
		return "Nothing to import"
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	case errors.Is(err, store.ErrTransactionFailed):
		return "The request could not be completed, please retry"

	default:
		return "An unexpected error occurred"
	}
}

// dataFormatMessage names the offending record without echoing its content.
func dataFormatMessage(err error) string {
	var dfe *recommend.DataFormatError
	if errors.As(err, &dfe) {
		return fmt.Sprintf("Grade record %d has an invalid %s", dfe.Index, dfe.Field)
	}
	return "Malformed grade data"
}

// SanitizeValidationError turns validator errors into a short message
// naming the first failing field.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", toSnake(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// toSnake converts a Go field name such as CourseCode to course_code.
func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt":
		return "too large"
	case "dive":
		return "invalid item"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted details. A non-empty fallback replaces the generic message of
// unexpected errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		msg = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err)
}
