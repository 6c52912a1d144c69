// Package history records every export run in a SQLite ledger under the
// state directory so operators can review what was produced, when, and why
// a run failed.
//
// Schema changes ship as numbered files in migrations/ and are applied in
// order the first time a Store opens a database.
package history
