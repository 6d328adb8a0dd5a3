package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"digestcast/internal/config"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("object not found")

// PutOptions controls how an object is written.
type PutOptions struct {
	ContentType string
	Public      bool
}

// Store is the minimal object store surface the pipeline depends on.
type Store interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body io.Reader, opts PutOptions) error
}

// Open builds the configured backend. The returned close function releases
// backend resources and is always non-nil.
func Open(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	if cfg == nil {
		return nil, nil, errors.New("objectstore: nil config")
	}
	switch cfg.Store.Backend {
	case config.StoreBackendGCS:
		store, err := NewGCS(ctx, cfg.Store.Bucket)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.StoreBackendDir:
		store, err := NewDir(cfg.Store.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("objectstore: unsupported backend %q", cfg.Store.Backend)
	}
}

// ContentTypeFor guesses a content type from the key extension.
func ContentTypeFor(key string) string {
	switch {
	case strings.HasSuffix(key, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(key, ".json"):
		return "application/json"
	case strings.HasSuffix(key, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(key, ".rss"):
		return "application/rss+xml; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("empty object key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return fmt.Errorf("invalid object key %q", key)
	}
	return nil
}
