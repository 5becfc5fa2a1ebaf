package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "wrapped ErrNotFound", err: fmt.Errorf("lookup: %w", ErrNotFound), expected: true},
		{name: "ErrEnrollmentNotFound", err: ErrEnrollmentNotFound, expected: true},
		{name: "ErrCapacityNotFound", err: ErrCapacityNotFound, expected: true},
		{name: "ErrCourseNotFound", err: ErrCourseNotFound, expected: true},
		{name: "duplicate is not not-found", err: ErrEnrollmentExists, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: true},
		{name: "ErrEnrollmentExists", err: ErrEnrollmentExists, expected: true},
		{name: "wrapped ErrEnrollmentExists", err: fmt.Errorf("insert: %w", ErrEnrollmentExists), expected: true},
		{name: "not found", err: ErrNotFound, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDuplicateError(tt.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	originalErr := errors.New("connection reset")
	storeErr := NewStoreError("enrollment", "enroll", "database error", originalErr)

	assert.Equal(t, "enroll operation on enrollment failed: database error: connection reset", storeErr.Error())
	assert.True(t, errors.Is(storeErr, originalErr))

	var target *StoreError
	assert.True(t, errors.As(fmt.Errorf("outer: %w", storeErr), &target))
	assert.Equal(t, "enrollment", target.Entity)

	bare := &StoreError{Entity: "course_capacity", Operation: "upsert", Message: "invalid seats"}
	assert.Equal(t, "upsert operation on course_capacity failed: invalid seats", bare.Error())
}
