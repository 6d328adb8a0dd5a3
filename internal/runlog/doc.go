// Package runlog records one row per pipeline run in a local SQLite ledger.
//
// The ledger is operator-facing history (digestcast runs); it is not the
// source of truth for published episodes, which live in the object store.
package runlog
