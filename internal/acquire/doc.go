// Package acquire downloads article audio into the local cache directory.
//
// The cache is keyed by article file name and survives across runs, so a
// re-run after a failure only downloads what is still missing. Download
// failures are fatal to the run: a missing clip would shift every later start
// point in the composite.
package acquire
