// Package main hosts the digestcast CLI entrypoint and command graph.
//
// Running the binary with no subcommand performs one full digest: today's
// articles are fetched, their audio cached and stitched into a single
// episode, the record and transcript page published, and both feeds rebuilt.
// Subcommands cover the maintenance paths around that run: rebuilding feeds
// from history, reading the local run ledger, preflight checks, notification
// tests, and configuration scaffolding.
//
// Keep this package lean: behaviour lives in internal/pipeline and the
// packages it drives; commands here only resolve configuration, build the
// logger, and wire dependencies.
package main
