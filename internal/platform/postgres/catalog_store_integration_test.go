//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/campuslab/elective-api/internal/domain"
	"github.com/campuslab/elective-api/internal/platform/postgres"
	"github.com/campuslab/elective-api/internal/store"
	"github.com/campuslab/elective-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresCapacityStore(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		s := postgres.NewPostgresCapacityStore(tx, nil)
		course := testdb.UniqueCode("CAP")

		first := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		rec, err := domain.NewCapacityRecord(course, 40, first)
		require.NoError(t, err)
		require.NoError(t, s.Upsert(ctx, rec))

		second := first.Add(time.Hour)
		rec2, err := domain.NewCapacityRecord(course, 35, second)
		require.NoError(t, err)
		require.NoError(t, s.Upsert(ctx, rec2))
		require.NoError(t, s.Upsert(ctx, rec2), "repeated identical upsert is idempotent")

		got, err := s.Get(ctx, course)
		require.NoError(t, err)
		assert.Equal(t, 35, got.TotalSeats)
		assert.True(t, got.LastModified.Equal(second))

		err = s.Upsert(ctx, &domain.CapacityRecord{CourseCode: course, TotalSeats: 0})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.ErrorIs(t, err, domain.ErrInvalidCapacity)
	})
}

func TestPostgresGradeAndCourseStores(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		grades := postgres.NewPostgresGradeStore(db, nil).WithTx(tx)
		courses := postgres.NewPostgresCourseStore(db, nil).WithTx(tx)

		student := testdb.UniqueCode("STU")
		records := []domain.GradeRecord{
			{StudentID: student, CourseCode: "CSE2005", Score: 81, LetterGrade: "A"},
			{StudentID: student, CourseCode: "CSE2005", Score: 64, LetterGrade: "C"},
		}
		require.NoError(t, grades.CreateMultiple(ctx, records))

		all, err := grades.ListAll(ctx)
		require.NoError(t, err)
		var mine []domain.GradeRecord
		for _, r := range all {
			if r.StudentID == student {
				mine = append(mine, r)
			}
		}
		assert.Equal(t, records, mine, "insertion order is preserved")

		code := testdb.UniqueCode("CSE")
		require.NoError(t, courses.UpsertMultiple(ctx, []*domain.Course{{Code: code, Name: "Compilers"}}))
		require.NoError(t, courses.UpsertMultiple(ctx, []*domain.Course{{Code: code, Name: "Compiler Design", Instructors: "Dr. Rao"}}))

		got, err := courses.Get(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, "Compiler Design", got.Name)
		assert.Equal(t, "Dr. Rao", got.Instructors)

		_, err = courses.Get(ctx, testdb.UniqueCode("NONE"))
		assert.ErrorIs(t, err, store.ErrCourseNotFound)
	})
}

func TestPostgresUsageLogStore(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		s := postgres.NewPostgresUsageLogStore(tx, nil)
		user := testdb.UniqueCode("U")

		base := time.Now().UTC().Truncate(time.Second)
		for i, action := range []string{"login", "enroll:MAT1002"} {
			entry, err := domain.NewUsageLog(domain.UserTypeStudent, user, action, base.Add(time.Duration(i)*time.Minute))
			require.NoError(t, err)
			require.NoError(t, s.Create(ctx, entry))
		}

		got, err := s.List(ctx, user, 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "enroll:MAT1002", got[0].Action)
		assert.Equal(t, domain.UserTypeStudent, got[0].UserType)

		got, err = s.List(ctx, user, 1)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}
