package episode

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"digestcast/internal/fileutil"
	"digestcast/internal/logging"
	"digestcast/internal/objectstore"
	"digestcast/internal/services"
)

const stagePublish = "publish"

// Publisher persists a finished episode locally and to the object store.
type Publisher struct {
	store       objectstore.Store
	renderer    *Renderer
	episodesDir string
	htmlDir     string
	logger      *slog.Logger
}

// NewPublisher wires a publisher. episodesDir and htmlDir receive the local
// copies of the record and transcript page.
func NewPublisher(store objectstore.Store, renderer *Renderer, episodesDir, htmlDir string, logger *slog.Logger) *Publisher {
	return &Publisher{
		store:       store,
		renderer:    renderer,
		episodesDir: episodesDir,
		htmlDir:     htmlDir,
		logger:      logging.NewComponentLogger(logger, "publisher"),
	}
}

// Publish uploads the composite at audioPath, then writes and uploads the
// record document and its transcript page. Every object is public. The first
// failure aborts with a storage error.
func (p *Publisher) Publish(ctx context.Context, record Record, audioPath string) error {
	if err := record.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, stagePublish, "validate record", "Episode record is malformed", err)
	}
	logger := logging.WithContext(ctx, p.logger).With(logging.String(logging.FieldEpisode, record.FileName))

	if err := p.putFile(ctx, AudioKey(record.FileName), audioPath); err != nil {
		return services.Wrap(services.ErrStorage, stagePublish, "upload audio", "Failed to upload composite audio", err)
	}
	logger.Info("composite uploaded",
		logging.String("key", AudioKey(record.FileName)),
		logging.Int64("file_size_bytes", record.FileSize),
		logging.String(logging.FieldEventType, "audio_uploaded"),
	)

	payload, err := record.Marshal()
	if err != nil {
		return services.Wrap(services.ErrValidation, stagePublish, "encode record", "Failed to encode episode record", err)
	}
	localRecord := filepath.Join(p.episodesDir, record.FileName+".json")
	if err := p.writeLocal(localRecord, payload); err != nil {
		return services.Wrap(services.ErrStorage, stagePublish, "write record", "Failed to write episode record locally", err)
	}
	if err := p.put(ctx, RecordKey(record.FileName), payload); err != nil {
		return services.Wrap(services.ErrStorage, stagePublish, "upload record", "Failed to upload episode record", err)
	}
	logger.Info("episode record stored",
		logging.String("key", RecordKey(record.FileName)),
		logging.Int("articles", len(record.Articles)),
		logging.String(logging.FieldEventType, "record_uploaded"),
	)

	page, err := p.renderer.Render(record)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, stagePublish, "render transcript", "Failed to render transcript page", err)
	}
	localPage := filepath.Join(p.htmlDir, record.FileName+".html")
	if err := p.writeLocal(localPage, page); err != nil {
		return services.Wrap(services.ErrStorage, stagePublish, "write transcript", "Failed to write transcript page locally", err)
	}
	if err := p.put(ctx, HTMLKey(record.FileName), page); err != nil {
		return services.Wrap(services.ErrStorage, stagePublish, "upload transcript", "Failed to upload transcript page", err)
	}
	logger.Info("transcript page stored",
		logging.String("key", HTMLKey(record.FileName)),
		logging.String(logging.FieldEventType, "transcript_uploaded"),
	)
	return nil
}

func (p *Publisher) putFile(ctx context.Context, key, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return p.store.Put(ctx, key, file, objectstore.PutOptions{ContentType: objectstore.ContentTypeFor(key), Public: true})
}

func (p *Publisher) put(ctx context.Context, key string, data []byte) error {
	return p.store.Put(ctx, key, bytes.NewReader(data), objectstore.PutOptions{ContentType: objectstore.ContentTypeFor(key), Public: true})
}

func (p *Publisher) writeLocal(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}
