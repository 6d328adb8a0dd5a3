package preflight

import (
	"context"
	"fmt"
	"strings"

	"digestcast/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the local preflight checks for the given config.
// Remote endpoints are left to CheckEndpoint so scheduled runs do not
// double the request count against the source.
func RunAll(_ context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Audio cache", cfg.Paths.CacheDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckReadableFile("Jingle", cfg.Paths.JinglePath),
	}
	if cfg.Paths.TemplatePath != "" {
		results = append(results, CheckReadableFile("Transcript template", cfg.Paths.TemplatePath))
	}
	if cfg.Store.Backend == config.StoreBackendDir {
		results = append(results, CheckDirectoryAccess("Object store directory", cfg.Store.Dir))
	}
	for _, status := range CheckSystemDeps(cfg) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Command}
		if !status.Available {
			result.Detail = status.Detail
		}
		results = append(results, result)
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}

// Summarize joins failed checks into a single line suitable for an error message.
func Summarize(failed []Result) string {
	parts := make([]string, 0, len(failed))
	for _, result := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	return strings.Join(parts, "; ")
}
