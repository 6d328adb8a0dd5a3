// Package preflight provides readiness checks for the binaries, paths and
// remote endpoints a digest run depends on.
//
// The pipeline runner calls RunAll before fetching anything so a run with a
// missing jingle or an unwritable cache fails in seconds instead of after
// every segment has been downloaded. The CLI "digestcast check" command
// prints the same results alongside CheckSystemDeps.
package preflight
