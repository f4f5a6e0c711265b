// Package testdb provides utilities for Postgres integration tests.
//
// Tests run against the database named by TASK_API_TEST_DB_URL (or
// DATABASE_URL) and are skipped when neither is set. Each test runs in its
// own transaction which is rolled back when the test completes, so tests can
// run in parallel without cleanup:
//
//	func TestMyFeature(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        taskStore := postgres.NewPostgresTaskStore(tx, nil)
//	        // ... exercise taskStore ...
//	    })
//	}
package testdb
