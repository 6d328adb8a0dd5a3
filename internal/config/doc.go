// Package config loads, normalizes, and validates digestcast configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DIGESTCAST_BUCKET. The Config type centralizes every knob the batch run and
// CLI need so work directories, the object store, and feed metadata are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
