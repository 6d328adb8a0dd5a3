// Package objectstore persists published artifacts (episode audio, episode
// records, transcript pages, feeds) in a flat key namespace.
//
// Two backends are provided: a Google Cloud Storage bucket for production and a
// local directory for development and tests. Callers receive a Store and never
// construct clients themselves.
package objectstore
