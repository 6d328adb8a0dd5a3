// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and the article being
//     processed for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into per-article skips and run-fatal conditions.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
