package domain

import (
	"strings"
	"time"
)

// DefaultSeats is the seat count of a course that has no capacity record.
const DefaultSeats = 60

// CapacityRecord is the configured seat count of a course.
type CapacityRecord struct {
	CourseCode   string    `json:"course_code"`
	TotalSeats   int       `json:"total_seats"`
	LastModified time.Time `json:"last_modified"`
}

// NewCapacityRecord creates a validated capacity record stamped with now.
func NewCapacityRecord(courseCode string, totalSeats int, now time.Time) (*CapacityRecord, error) {
	rec := &CapacityRecord{
		CourseCode:   courseCode,
		TotalSeats:   totalSeats,
		LastModified: now.UTC(),
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Validate checks the course code is set and the seat count is positive.
func (c *CapacityRecord) Validate() error {
	if strings.TrimSpace(c.CourseCode) == "" {
		return ErrEmptyCourseCode
	}
	if c.TotalSeats < 1 {
		return ErrInvalidCapacity
	}
	return nil
}

// CourseOccupancy is the seat usage of one course at read time.
type CourseOccupancy struct {
	CourseCode string `json:"course_code"`
	TotalSeats int    `json:"total_seats"`
	Enrolled   int    `json:"enrolled"`
}

// Available returns the number of free seats. A capacity lowered below the
// current occupancy reports zero rather than a negative number.
func (o CourseOccupancy) Available() int {
	if o.Enrolled >= o.TotalSeats {
		return 0
	}
	return o.TotalSeats - o.Enrolled
}

// Full reports whether no seat is left.
func (o CourseOccupancy) Full() bool {
	return o.Available() == 0
}

// UtilizationPercent returns enrolled/total as a percentage.
func (o CourseOccupancy) UtilizationPercent() float64 {
	if o.TotalSeats <= 0 {
		return 0
	}
	return float64(o.Enrolled) / float64(o.TotalSeats) * 100
}
