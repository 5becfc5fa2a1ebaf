package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrDataFormat is returned when grade records are missing a required
	// field or carry an unusable score.
	ErrDataFormat = errors.New("malformed grade data")

	// ErrInsufficientData is returned when similarity is requested for
	// fewer than two students.
	ErrInsufficientData = errors.New("at least two students are required")
)

// DataFormatError identifies the record and field that failed validation.
type DataFormatError struct {
	Index int    // position of the record in the input
	Field string // student_id, course_code or score
	Err   error
}

// Error implements the error interface.
func (e *DataFormatError) Error() string {
	return fmt.Sprintf("grade record %d: invalid %s: %v", e.Index, e.Field, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *DataFormatError) Unwrap() error {
	return e.Err
}

func newDataFormatError(index int, field string) error {
	return &DataFormatError{Index: index, Field: field, Err: ErrDataFormat}
}
