package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCS stores objects in a Google Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
}

// NewGCS creates a bucket-scoped store using application default credentials
// unless opts say otherwise.
func NewGCS(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCS, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("gcs: bucket name required")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: create client: %w", err)
	}
	return &GCS{client: client, bucket: client.Bucket(bucket), name: bucket}, nil
}

// List returns all object names under prefix in lexical order.
func (g *GCS) List(ctx context.Context, prefix string) ([]string, error) {
	it := g.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	var keys []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs: list gs://%s/%s: %w", g.name, prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

// Get reads the full object body.
func (g *GCS) Get(ctx context.Context, key string) ([]byte, error) {
	reader, err := g.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("gcs: get gs://%s/%s: %w", g.name, key, ErrNotFound)
		}
		return nil, fmt.Errorf("gcs: get gs://%s/%s: %w", g.name, key, err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("gcs: read gs://%s/%s: %w", g.name, key, err)
	}
	return data, nil
}

// Put uploads body to key, replacing any existing object.
func (g *GCS) Put(ctx context.Context, key string, body io.Reader, opts PutOptions) error {
	if err := validateKey(key); err != nil {
		return err
	}
	writer := g.bucket.Object(key).NewWriter(ctx)
	writer.ContentType = opts.ContentType
	if writer.ContentType == "" {
		writer.ContentType = ContentTypeFor(key)
	}
	if opts.Public {
		writer.PredefinedACL = "publicRead"
	}
	if _, err := io.Copy(writer, body); err != nil {
		_ = writer.Close()
		return fmt.Errorf("gcs: upload gs://%s/%s: %w", g.name, key, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("gcs: finalize gs://%s/%s: %w", g.name, key, err)
	}
	return nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}
