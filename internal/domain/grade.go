package domain

// GradeRecord is one historical (student, course, score) observation.
// Records are loaded by an external collaborator and never modified here.
type GradeRecord struct {
	StudentID   string  `json:"student_id"`
	CourseCode  string  `json:"course_code"`
	Score       float64 `json:"score"`
	LetterGrade string  `json:"letter_grade,omitempty"`
}
