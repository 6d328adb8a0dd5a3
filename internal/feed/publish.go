package feed

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"digestcast/internal/fileutil"
	"digestcast/internal/logging"
	"digestcast/internal/objectstore"
	"digestcast/internal/services"
)

// Limits bounds how much history each feed reads and emits.
type Limits struct {
	Episodes       int
	Articles       int
	ArticleHistory int
}

// Publisher rebuilds and uploads both feeds.
type Publisher struct {
	store    objectstore.Store
	channel  Channel
	limits   Limits
	checker  Availability
	localDir string
	now      func() time.Time
	logger   *slog.Logger
}

// NewPublisher wires a feed publisher. localDir receives a copy of each
// feed document before upload.
func NewPublisher(store objectstore.Store, channel Channel, limits Limits, checker Availability, localDir string, logger *slog.Logger) *Publisher {
	return &Publisher{
		store:    store,
		channel:  channel,
		limits:   limits,
		checker:  checker,
		localDir: localDir,
		now:      time.Now,
		logger:   logging.NewComponentLogger(logger, "feed"),
	}
}

// SetClock overrides the build timestamp source.
func (p *Publisher) SetClock(now func() time.Time) {
	if now != nil {
		p.now = now
	}
}

// PublishEpisodeFeed rebuilds feed.rss from the newest records and uploads it.
// It returns the number of entries.
func (p *Publisher) PublishEpisodeFeed(ctx context.Context) (int, error) {
	ctx = services.WithStage(ctx, stageFeed)
	records, err := LoadHistory(ctx, p.store, p.limits.Episodes)
	if err != nil {
		return 0, err
	}
	doc, err := BuildEpisodeFeed(p.channel, records, p.now())
	if err != nil {
		return 0, err
	}
	if err := p.publish(ctx, EpisodeFeedKey, doc); err != nil {
		return 0, err
	}
	logging.WithContext(ctx, p.logger).Info("episode feed published",
		logging.String("key", EpisodeFeedKey),
		logging.Int("episodes", len(records)),
		logging.String(logging.FieldEventType, "feed_published"),
	)
	return len(records), nil
}

// PublishArticleFeed rebuilds feed-article.rss and uploads it. It runs once
// per call and returns the number of entries.
func (p *Publisher) PublishArticleFeed(ctx context.Context) (int, error) {
	ctx = services.WithStage(ctx, stageFeed)
	records, err := LoadHistory(ctx, p.store, p.limits.ArticleHistory)
	if err != nil {
		return 0, err
	}
	entries, err := CollectArticles(ctx, records, p.limits.Articles, p.checker, logging.WithContext(ctx, p.logger))
	if err != nil {
		return 0, err
	}
	doc, err := BuildArticleFeed(p.channel, entries, p.now())
	if err != nil {
		return 0, err
	}
	if err := p.publish(ctx, ArticleFeedKey, doc); err != nil {
		return 0, err
	}
	logging.WithContext(ctx, p.logger).Info("article feed published",
		logging.String("key", ArticleFeedKey),
		logging.Int("articles", len(entries)),
		logging.String(logging.FieldEventType, "feed_published"),
	)
	return len(entries), nil
}

func (p *Publisher) publish(ctx context.Context, key string, doc []byte) error {
	if p.localDir != "" {
		if err := os.MkdirAll(p.localDir, 0o755); err != nil {
			return services.Wrap(services.ErrStorage, stageFeed, "write feed", "Failed to create feed directory", err)
		}
		if err := fileutil.WriteFileAtomic(filepath.Join(p.localDir, key), doc, 0o644); err != nil {
			return services.Wrap(services.ErrStorage, stageFeed, "write feed", "Failed to write feed locally", err)
		}
	}
	opts := objectstore.PutOptions{ContentType: objectstore.ContentTypeFor(key), Public: true}
	if err := p.store.Put(ctx, key, bytes.NewReader(doc), opts); err != nil {
		return services.Wrap(services.ErrStorage, stageFeed, "upload feed", "Failed to upload "+key, err)
	}
	return nil
}
