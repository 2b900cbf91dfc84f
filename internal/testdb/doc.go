// Package testdb provides helpers for integration tests that need a real
// PostgreSQL database.
//
// Tests are skipped when no database URL is configured. The embedded goose
// migrations are applied to every opened pool, and WithTx runs a test body
// inside a transaction that is always rolled back, so tests can share one
// schema without cleaning up:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.Open(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        // use stores bound with WithTx(tx)
//	    })
//	}
//
// Files other than this one are built only with the integration tag.
package testdb
