package feed

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/eduncan911/podcast"

	"digestcast/internal/episode"
	"digestcast/internal/logging"
	"digestcast/internal/services"
)

// ArticleEntry is one flattened article with its audio size.
type ArticleEntry struct {
	Article episode.Article
	Size    int64
}

// CollectArticles flattens records (newest first, articles in stored order)
// into at most limit entries unique by file name. Articles whose audio is no
// longer available are skipped and do not count. Collection stops as soon as
// limit entries exist. A check that gets no answer from the server aborts
// collection so a network outage never empties the feed.
func CollectArticles(ctx context.Context, records []episode.Record, limit int, checker Availability, logger *slog.Logger) ([]ArticleEntry, error) {
	ordered := make([]episode.Record, len(records))
	copy(ordered, records)
	SortRecords(ordered)

	if logger == nil {
		logger = logging.NewNop()
	}
	seen := make(map[string]struct{})
	unavailable := make(map[string]struct{})
	var entries []ArticleEntry
	for _, record := range ordered {
		for _, article := range record.Articles {
			if limit > 0 && len(entries) >= limit {
				return entries, nil
			}
			if _, dup := seen[article.FileName]; dup {
				continue
			}
			if _, gone := unavailable[article.FileName]; gone {
				continue
			}
			size, ok, err := checker.Check(ctx, article.MediaURL)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil, err
				}
				if !errors.Is(err, services.ErrTransient) {
					err = services.Wrap(services.ErrTransient, stageFeed, "check article audio", article.MediaURL, err)
				}
				return nil, err
			}
			if !ok {
				unavailable[article.FileName] = struct{}{}
				logger.Info("article audio unavailable; omitted from article feed",
					logging.String(logging.FieldArticle, article.FileName),
					logging.String(logging.FieldEpisode, record.FileName),
					logging.String("media_url", article.MediaURL),
					logging.String(logging.FieldEventType, "article_unavailable"),
				)
				continue
			}
			seen[article.FileName] = struct{}{}
			article.Date = record.Date
			entries = append(entries, ArticleEntry{Article: article, Size: size})
		}
	}
	return entries, nil
}

// BuildArticleFeed renders entries in the given order.
func BuildArticleFeed(channel Channel, entries []ArticleEntry, built time.Time) ([]byte, error) {
	p := channel.newPodcast(channel.ArticleFeedName, ArticleFeedKey, built)
	for _, entry := range entries {
		article := entry.Article
		description := truncateRunes(article.Body, SummaryBodyLimit)
		if description == "" {
			description = article.Title
		}
		if description == "" {
			description = article.FileName
		}
		title := article.Title
		if title == "" {
			title = article.FileName
		}
		item := podcast.Item{
			GUID:        article.FileName,
			Title:       title,
			Link:        article.URL,
			Description: description,
		}
		if published, err := time.Parse(episode.DateLayout, article.Date); err == nil {
			item.AddPubDate(&published)
		}
		item.AddEnclosure(article.MediaURL, podcast.MP3, entry.Size)
		if _, err := p.AddItem(item); err != nil {
			return nil, services.Wrap(services.ErrValidation, stageFeed, "build article feed", article.FileName, err)
		}
	}
	var buf bytes.Buffer
	if err := p.Encode(&buf); err != nil {
		return nil, services.Wrap(services.ErrValidation, stageFeed, "encode article feed", "Failed to encode feed", err)
	}
	return buf.Bytes(), nil
}
