// Package episode defines the article and episode record types shared by the
// pipeline and persists a finished episode: the composite audio, the JSON
// record, and the rendered transcript page.
//
// Records are keyed by their YYYYMMDD file name. Publishing a record for a
// date replaces only that date's objects; other dates are never touched.
package episode
