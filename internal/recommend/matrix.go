package recommend

import (
	"math"
	"sort"
	"strings"

	"github.com/campuslab/elective-api/internal/domain"
)

// GradeMatrix is a dense student×course grade table. Students and courses
// are ordered ascending; every row holds one value per course and absent
// grades are zero. A GradeMatrix is never modified after construction.
type GradeMatrix struct {
	students     []string
	courses      []string
	studentIndex map[string]int
	courseIndex  map[string]int
	rows         [][]float64
}

// MatrixOption adjusts how BuildGradeMatrix shapes the matrix.
type MatrixOption func(*matrixConfig)

type matrixConfig struct {
	extraCourses  []string
	extraStudents []string
}

// WithCourseCodes adds catalog courses that may have no grade records, so
// they appear as all-zero columns.
func WithCourseCodes(codes ...string) MatrixOption {
	return func(c *matrixConfig) {
		c.extraCourses = append(c.extraCourses, codes...)
	}
}

// WithStudentIDs adds students that may have no grade records, so they
// appear as all-zero rows.
func WithStudentIDs(ids ...string) MatrixOption {
	return func(c *matrixConfig) {
		c.extraStudents = append(c.extraStudents, ids...)
	}
}

// BuildGradeMatrix builds a GradeMatrix from records in any order.
//
// When the same (student, course) pair appears more than once, the last
// record in input order wins. A record with a blank student id, a blank
// course code or a non-finite score fails the whole build with a
// *DataFormatError. Empty input yields an empty matrix.
func BuildGradeMatrix(records []domain.GradeRecord, opts ...MatrixOption) (*GradeMatrix, error) {
	cfg := &matrixConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	studentSet := make(map[string]struct{})
	courseSet := make(map[string]struct{})
	for i, r := range records {
		if strings.TrimSpace(r.StudentID) == "" {
			return nil, newDataFormatError(i, "student_id")
		}
		if strings.TrimSpace(r.CourseCode) == "" {
			return nil, newDataFormatError(i, "course_code")
		}
		if math.IsNaN(r.Score) || math.IsInf(r.Score, 0) {
			return nil, newDataFormatError(i, "score")
		}
		studentSet[r.StudentID] = struct{}{}
		courseSet[r.CourseCode] = struct{}{}
	}
	for _, id := range cfg.extraStudents {
		if strings.TrimSpace(id) != "" {
			studentSet[id] = struct{}{}
		}
	}
	for _, code := range cfg.extraCourses {
		if strings.TrimSpace(code) != "" {
			courseSet[code] = struct{}{}
		}
	}

	m := &GradeMatrix{
		students:     sortedKeys(studentSet),
		courses:      sortedKeys(courseSet),
		studentIndex: make(map[string]int, len(studentSet)),
		courseIndex:  make(map[string]int, len(courseSet)),
	}
	for i, id := range m.students {
		m.studentIndex[id] = i
	}
	for j, code := range m.courses {
		m.courseIndex[code] = j
	}

	m.rows = make([][]float64, len(m.students))
	for i := range m.rows {
		m.rows[i] = make([]float64, len(m.courses))
	}
	for _, r := range records {
		m.rows[m.studentIndex[r.StudentID]][m.courseIndex[r.CourseCode]] = r.Score
	}

	return m, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NumStudents returns the number of rows.
func (m *GradeMatrix) NumStudents() int { return len(m.students) }

// NumCourses returns the number of columns.
func (m *GradeMatrix) NumCourses() int { return len(m.courses) }

// Students returns the student ids in row order.
func (m *GradeMatrix) Students() []string {
	return append([]string(nil), m.students...)
}

// Courses returns the course codes in column order.
func (m *GradeMatrix) Courses() []string {
	return append([]string(nil), m.courses...)
}

// StudentIndex returns the row of a student.
func (m *GradeMatrix) StudentIndex(studentID string) (int, bool) {
	i, ok := m.studentIndex[studentID]
	return i, ok
}

// CourseIndex returns the column of a course.
func (m *GradeMatrix) CourseIndex(courseCode string) (int, bool) {
	j, ok := m.courseIndex[courseCode]
	return j, ok
}

// Grade returns the grade of a student in a course, or zero when either is
// unknown or the course was not taken.
func (m *GradeMatrix) Grade(studentID, courseCode string) float64 {
	i, ok := m.studentIndex[studentID]
	if !ok {
		return 0
	}
	j, ok := m.courseIndex[courseCode]
	if !ok {
		return 0
	}
	return m.rows[i][j]
}

// Row returns a copy of the grade vector at row i.
func (m *GradeMatrix) Row(i int) []float64 {
	return append([]float64(nil), m.rows[i]...)
}
