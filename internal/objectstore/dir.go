package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"digestcast/internal/fileutil"
)

// Dir stores objects as files below a root directory. Keys map to relative
// slash-separated paths. Every file is written world-readable.
type Dir struct {
	root string
}

// NewDir creates the root directory when missing.
func NewDir(root string) (*Dir, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("dir store: root required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("dir store: create root: %w", err)
	}
	return &Dir{root: root}, nil
}

// Root returns the backing directory.
func (d *Dir) Root() string { return d.root }

// List returns all keys starting with prefix in lexical order.
func (d *Dir) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if entry.IsDir() || strings.HasSuffix(entry.Name(), ".part") {
			return nil
		}
		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("dir store: list %q: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Get reads the file stored under key.
func (d *Dir) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(d.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("dir store: get %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("dir store: get %q: %w", key, err)
	}
	return data, nil
}

// Put writes body under key atomically, replacing any existing file.
func (d *Dir) Put(ctx context.Context, key string, body io.Reader, _ PutOptions) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	target := d.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("dir store: put %q: %w", key, err)
	}
	if _, err := fileutil.WriteAtomic(target, body, 0o644); err != nil {
		return fmt.Errorf("dir store: put %q: %w", key, err)
	}
	return nil
}

func (d *Dir) path(key string) string {
	return filepath.Join(d.root, filepath.FromSlash(key))
}
