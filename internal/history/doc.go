// Package history keeps a SQLite ledger of batch runs and the attempts made in
// each, so operators can see how often a transaction was retried and why it
// failed. The ledger is informational: the queue file stays the source of
// truth for pending work.
//
// The schema version lives in PRAGMA user_version. A ledger at any other
// version is rejected with ErrSchemaMismatch rather than migrated.
package history
