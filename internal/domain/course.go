package domain

import "strings"

// Course is a catalog entry owned by the external course catalog.
// The service only reads it to decorate recommendations.
type Course struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Objective   string `json:"objective"`
	Instructors string `json:"instructors"`
	Feedback    string `json:"feedback"`
}

// Validate checks the course has an identifier.
func (c *Course) Validate() error {
	if strings.TrimSpace(c.Code) == "" {
		return ErrEmptyCourseCode
	}
	return nil
}
