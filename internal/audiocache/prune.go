// Package audiocache maintains the local article audio cache.
//
// Downloads land in the cache directory under their media file name and are
// reused on later runs. Prune removes entries that have not been touched for
// the configured retention window so the directory does not grow without
// bound; a pruned file is simply downloaded again if a future run needs it.
package audiocache

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"digestcast/internal/logging"
)

// PruneResult contains the outcome of a prune pass.
type PruneResult struct {
	Removed    []string
	FreedBytes int64
	Errors     []PruneError
}

// PruneError pairs a file path with its removal error.
type PruneError struct {
	Path  string
	Error error
}

// Entry describes one cached file.
type Entry struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// Prune removes regular files in dir last modified before now-maxAge.
// A non-positive maxAge disables pruning. Subdirectories are left alone.
func Prune(ctx context.Context, dir string, maxAge time.Duration, now time.Time, logger *slog.Logger) PruneResult {
	result := PruneResult{}
	if maxAge <= 0 {
		return result
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	entries, err := List(dir)
	if err != nil {
		result.Errors = append(result.Errors, PruneError{Path: dir, Error: err})
		return result
	}

	cutoff := now.Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.ModTime.Before(cutoff) {
			continue
		}
		if err := os.Remove(entry.Path); err != nil && !os.IsNotExist(err) {
			result.Errors = append(result.Errors, PruneError{Path: entry.Path, Error: err})
			logger.Warn("failed to remove cached audio",
				logging.String("path", entry.Path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "cache_prune_failed"),
				logging.String(logging.FieldErrorHint, "check cache_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, entry.Path)
		result.FreedBytes += entry.Size
		logger.Debug("removed cached audio",
			logging.String(logging.FieldArticle, entry.Name),
			logging.Duration("age", now.Sub(entry.ModTime)),
		)
	}

	if len(result.Removed) > 0 {
		logger.Info("audio cache pruned",
			logging.Int("removed", len(result.Removed)),
			logging.Int64("freed_bytes", result.FreedBytes),
			logging.String(logging.FieldEventType, "cache_pruned"),
		)
	}
	return result
}

// List returns the regular files in dir sorted by name. A missing or blank
// dir yields no entries.
func List(dir string) ([]Entry, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil
	}
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	for _, dirEntry := range dirEntries {
		if !dirEntry.Type().IsRegular() {
			continue
		}
		info, err := dirEntry.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:    dirEntry.Name(),
			Path:    filepath.Join(dir, dirEntry.Name()),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
