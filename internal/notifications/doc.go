// Package notifications announces run outcomes via ntfy.
//
// The topic comes from config.toml (or NTFY_TOPIC). When no topic is set a
// no-op Service is returned, so callers never branch on configuration.
// Delivery failures are returned to the caller, which logs them; they never
// change the outcome of a run.
package notifications
