// Package testdb provides utilities for database integration tests.
//
// Tests obtain a connection with GetTestDBWithT, which skips the test when
// DATABASE_URL is not set and applies the embedded migrations once per
// process. Tests that only need isolation run inside WithTx, whose
// transaction is always rolled back. Tests that exercise concurrency need
// real commits; they use CleanupCourse to remove the rows they created.
//
//	func TestEnrollmentStore(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        s := postgres.NewPostgresEnrollmentStore(tx, nil)
//	        // ...
//	    })
//	}
package testdb
