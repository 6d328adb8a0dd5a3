// Package logs reads per-run log files for the CLI.
//
// Every digest run writes its own file in the log directory. Latest finds the
// newest one and Tail returns its last lines, optionally waiting for new
// output while a run is still in progress. Memory stays bounded by the
// requested line count regardless of file size.
package logs
