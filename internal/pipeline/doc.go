// Package pipeline runs one daily digest end to end.
//
// A Runner holds the single-run file lock, records the run in the local
// ledger, and drives the stages in order: fetch today's articles, cache
// their audio, assemble and export the composite, publish the episode
// record, then rebuild the episode and article feeds. Per-article problems
// become skips inside the source and assemble stages; every other error ends
// the run and is returned to the CLI.
//
// Notifications are best effort. A failed ntfy request is logged and never
// changes the run result.
package pipeline
