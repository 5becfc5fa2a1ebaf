package recommend

import (
	"errors"
	"math"
	"testing"

	"github.com/campuslab/elective-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGradeMatrix_CellsMatchInput(t *testing.T) {
	t.Parallel()

	records := []domain.GradeRecord{
		{StudentID: "S2", CourseCode: "PHY1001", Score: 71},
		{StudentID: "S1", CourseCode: "MAT1002", Score: 88},
		{StudentID: "S3", CourseCode: "CSE2005", Score: 93},
		{StudentID: "S1", CourseCode: "CSE2005", Score: 64},
	}

	m, err := BuildGradeMatrix(records)
	require.NoError(t, err)

	assert.Equal(t, []string{"S1", "S2", "S3"}, m.Students())
	assert.Equal(t, []string{"CSE2005", "MAT1002", "PHY1001"}, m.Courses())

	for _, r := range records {
		assert.Equal(t, r.Score, m.Grade(r.StudentID, r.CourseCode))
	}

	present := map[[2]string]bool{}
	for _, r := range records {
		present[[2]string{r.StudentID, r.CourseCode}] = true
	}
	for _, s := range m.Students() {
		for _, c := range m.Courses() {
			if !present[[2]string{s, c}] {
				assert.Zero(t, m.Grade(s, c), "%s/%s should be zero", s, c)
			}
		}
	}
}

func TestBuildGradeMatrix_LastDuplicateWins(t *testing.T) {
	t.Parallel()

	m, err := BuildGradeMatrix([]domain.GradeRecord{
		{StudentID: "S1", CourseCode: "MAT1002", Score: 50},
		{StudentID: "S2", CourseCode: "MAT1002", Score: 70},
		{StudentID: "S1", CourseCode: "MAT1002", Score: 80},
	})
	require.NoError(t, err)
	assert.Equal(t, 80.0, m.Grade("S1", "MAT1002"))
}

func TestBuildGradeMatrix_Empty(t *testing.T) {
	t.Parallel()

	m, err := BuildGradeMatrix(nil)
	require.NoError(t, err)
	assert.Zero(t, m.NumStudents())
	assert.Zero(t, m.NumCourses())
}

func TestBuildGradeMatrix_ExtraRowsAndColumns(t *testing.T) {
	t.Parallel()

	m, err := BuildGradeMatrix(
		[]domain.GradeRecord{{StudentID: "A", CourseCode: "X", Score: 90}},
		WithStudentIDs("C", " "),
		WithCourseCodes("Y", "X"),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, m.Students())
	assert.Equal(t, []string{"X", "Y"}, m.Courses())
	assert.Equal(t, []float64{0, 0}, m.Row(1))
}

func TestBuildGradeMatrix_DataFormatErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		record domain.GradeRecord
		field  string
	}{
		{name: "blank student", record: domain.GradeRecord{StudentID: "  ", CourseCode: "X", Score: 1}, field: "student_id"},
		{name: "blank course", record: domain.GradeRecord{StudentID: "A", Score: 1}, field: "course_code"},
		{name: "NaN score", record: domain.GradeRecord{StudentID: "A", CourseCode: "X", Score: math.NaN()}, field: "score"},
		{name: "infinite score", record: domain.GradeRecord{StudentID: "A", CourseCode: "X", Score: math.Inf(1)}, field: "score"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			records := []domain.GradeRecord{
				{StudentID: "B", CourseCode: "X", Score: 60},
				tt.record,
			}
			m, err := BuildGradeMatrix(records)
			assert.Nil(t, m)
			require.ErrorIs(t, err, ErrDataFormat)

			var dfe *DataFormatError
			require.True(t, errors.As(err, &dfe))
			assert.Equal(t, 1, dfe.Index)
			assert.Equal(t, tt.field, dfe.Field)
		})
	}
}
