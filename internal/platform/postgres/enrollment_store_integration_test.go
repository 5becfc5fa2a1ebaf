//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/campuslab/elective-api/internal/domain"
	"github.com/campuslab/elective-api/internal/platform/postgres"
	"github.com/campuslab/elective-api/internal/store"
	"github.com/campuslab/elective-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEnrollment(t *testing.T, studentID, courseCode string) *domain.Enrollment {
	t.Helper()
	e, err := domain.NewEnrollment(studentID, courseCode, time.Now())
	require.NoError(t, err)
	return e
}

// TestPostgresEnrollmentStore_ConcurrentEnrollment commits real rows: C+5
// distinct students race for a course with C seats.
func TestPostgresEnrollmentStore_ConcurrentEnrollment(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	course := testdb.UniqueCode("RACE")
	t.Cleanup(func() { testdb.CleanupCourse(t, db, course) })

	const seats = 7
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	capacities := postgres.NewPostgresCapacityStore(db, nil)
	rec, err := domain.NewCapacityRecord(course, seats, time.Now())
	require.NoError(t, err)
	require.NoError(t, capacities.Upsert(ctx, rec))

	enrollments := postgres.NewPostgresEnrollmentStore(db, nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes = map[domain.EnrollOutcome]int{}
		start    = make(chan struct{})
	)
	for i := 0; i < seats+5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			outcome, err := enrollments.Enroll(ctx, mustEnrollment(t, fmt.Sprintf("RS%03d", i), course), domain.DefaultSeats)
			assert.NoError(t, err)
			mu.Lock()
			outcomes[outcome]++
			mu.Unlock()
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, seats, outcomes[domain.EnrollOutcomeCommitted])
	assert.Equal(t, 5, outcomes[domain.EnrollOutcomeCourseFull])

	occupancy, err := enrollments.CountByCourse(ctx, course)
	require.NoError(t, err)
	assert.Equal(t, seats, occupancy)
}

// TestPostgresEnrollmentStore_ConcurrentDuplicate races one student against
// themself; the pair must be stored exactly once.
func TestPostgresEnrollmentStore_ConcurrentDuplicate(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	course := testdb.UniqueCode("DUP")
	t.Cleanup(func() { testdb.CleanupCourse(t, db, course) })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	enrollments := postgres.NewPostgresEnrollmentStore(db, nil)

	var wg sync.WaitGroup
	results := make(chan domain.EnrollOutcome, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := enrollments.Enroll(ctx, mustEnrollment(t, "S-DUP", course), domain.DefaultSeats)
			assert.NoError(t, err)
			results <- outcome
		}()
	}
	wg.Wait()
	close(results)

	committed := 0
	for outcome := range results {
		if outcome == domain.EnrollOutcomeCommitted {
			committed++
		} else {
			assert.Equal(t, domain.EnrollOutcomeAlreadyEnrolled, outcome)
		}
	}
	assert.Equal(t, 1, committed)

	n, err := enrollments.CountByCourse(ctx, course)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPostgresEnrollmentStore_SeatScenario(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		capacities := postgres.NewPostgresCapacityStore(tx, nil)
		enrollments := postgres.NewPostgresEnrollmentStore(tx, nil)

		course := testdb.UniqueCode("MAT1002")
		rec, err := domain.NewCapacityRecord(course, 2, time.Now())
		require.NoError(t, err)
		require.NoError(t, capacities.Upsert(ctx, rec))

		for _, s := range []string{"S1", "S2"} {
			outcome, err := enrollments.Enroll(ctx, mustEnrollment(t, s, course), domain.DefaultSeats)
			require.NoError(t, err)
			assert.Equal(t, domain.EnrollOutcomeCommitted, outcome)
		}

		occupancy, err := enrollments.CountByCourse(ctx, course)
		require.NoError(t, err)
		assert.Equal(t, 2, occupancy)

		outcome, err := enrollments.Enroll(ctx, mustEnrollment(t, "S3", course), domain.DefaultSeats)
		require.NoError(t, err)
		assert.Equal(t, domain.EnrollOutcomeCourseFull, outcome)

		outcome, err = enrollments.Enroll(ctx, mustEnrollment(t, "S1", course), domain.DefaultSeats)
		require.NoError(t, err)
		assert.Equal(t, domain.EnrollOutcomeAlreadyEnrolled, outcome)

		occupancy, err = enrollments.CountByCourse(ctx, course)
		require.NoError(t, err)
		assert.Equal(t, 2, occupancy)

		// Lowering capacity below occupancy keeps existing rows.
		rec.TotalSeats = 1
		require.NoError(t, capacities.Upsert(ctx, rec))
		list, err := enrollments.ListAll(ctx)
		require.NoError(t, err)
		count := 0
		for _, e := range list {
			if e.CourseCode == course {
				count++
			}
		}
		assert.Equal(t, 2, count)

		require.NoError(t, enrollments.Delete(ctx, "S1", course))
		assert.ErrorIs(t, enrollments.Delete(ctx, "S1", course), store.ErrEnrollmentNotFound)

		n, err := enrollments.DeleteByCourse(ctx, course)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestPostgresEnrollmentStore_DefaultSeatsWithoutCapacityRow(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		enrollments := postgres.NewPostgresEnrollmentStore(tx, nil)
		course := testdb.UniqueCode("NOCAP")

		outcome, err := enrollments.Enroll(ctx, mustEnrollment(t, "S1", course), 1)
		require.NoError(t, err)
		assert.Equal(t, domain.EnrollOutcomeCommitted, outcome)

		outcome, err = enrollments.Enroll(ctx, mustEnrollment(t, "S2", course), 1)
		require.NoError(t, err)
		assert.Equal(t, domain.EnrollOutcomeCourseFull, outcome)

		_, err = postgres.NewPostgresCapacityStore(tx, nil).Get(ctx, course)
		assert.ErrorIs(t, err, store.ErrCapacityNotFound)
	})
}
