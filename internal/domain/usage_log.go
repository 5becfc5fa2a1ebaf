package domain

import (
	"strings"
	"time"
)

// UserType identifies who performed an audited action.
type UserType string

// Known user types.
const (
	UserTypeStudent UserType = "student"
	UserTypeHOD     UserType = "hod"
	UserTypeSystem  UserType = "system"
)

// UsageLog is one audit entry.
type UsageLog struct {
	Timestamp time.Time `json:"timestamp"`
	UserType  UserType  `json:"user_type"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
}

// NewUsageLog creates a validated usage log entry stamped with now.
func NewUsageLog(userType UserType, userID, action string, now time.Time) (*UsageLog, error) {
	entry := &UsageLog{
		Timestamp: now.UTC(),
		UserType:  userType,
		UserID:    strings.TrimSpace(userID),
		Action:    strings.TrimSpace(action),
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return entry, nil
}

// Validate checks the entry is complete.
func (u *UsageLog) Validate() error {
	switch u.UserType {
	case UserTypeStudent, UserTypeHOD, UserTypeSystem:
	default:
		return ErrInvalidUserType
	}
	if u.UserID == "" {
		return ErrEmptyStudentID
	}
	if u.Action == "" {
		return ErrEmptyAction
	}
	return nil
}
