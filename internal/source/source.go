package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"digestcast/internal/config"
	"digestcast/internal/episode"
	"digestcast/internal/logging"
	"digestcast/internal/services"
)

const stageSource = "source"

// Result is the outcome for one candidate item. Exactly one of Article or
// Err is meaningful: a non-nil Err marks the item as skipped.
type Result struct {
	Ref     string
	Article episode.Article
	Err     error
}

// Skipped reports whether the item was dropped.
func (r Result) Skipped() bool { return r.Err != nil }

func skip(ref string, err error) Result {
	return Result{Ref: ref, Err: err}
}

// Source lists today's items in publication order.
type Source interface {
	FetchToday(ctx context.Context) ([]Result, error)
}

// New builds the configured source.
func New(cfg config.Source, now func() time.Time) (Source, error) {
	client := &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	switch cfg.Kind {
	case config.SourceKindHTML:
		return NewHTML(cfg.BaseURL, client, cfg.UserAgent), nil
	case config.SourceKindRSS:
		return NewRSS(cfg.FeedURL, client, cfg.UserAgent, now), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, stageSource, "select source",
			fmt.Sprintf("Unsupported source kind %q", cfg.Kind), nil)
	}
}

// Articles keeps successful results, logs skips, and drops later items whose
// file name repeats an earlier one.
func Articles(ctx context.Context, results []Result, logger *slog.Logger) []episode.Article {
	logger = logging.WithContext(services.WithStage(ctx, stageSource), logging.NewComponentLogger(logger, "source"))
	seen := make(map[string]struct{}, len(results))
	articles := make([]episode.Article, 0, len(results))
	for _, result := range results {
		if result.Skipped() {
			logging.WarnWithContext(logger, "source item skipped", "source_item_skipped",
				logging.String("ref", result.Ref),
				logging.Error(result.Err),
				logging.String(logging.FieldImpact, "article omitted from today's episode"),
			)
			continue
		}
		if _, dup := seen[result.Article.FileName]; dup {
			logging.WarnWithContext(logger, "duplicate audio file name skipped", "source_item_duplicate",
				logging.String(logging.FieldArticle, result.Article.FileName),
				logging.String("ref", result.Ref),
				logging.String(logging.FieldImpact, "article omitted from today's episode"),
			)
			continue
		}
		seen[result.Article.FileName] = struct{}{}
		articles = append(articles, result.Article)
	}
	logger.Info("articles discovered",
		logging.Int("articles", len(articles)),
		logging.Int("skipped", len(results)-len(articles)),
		logging.String(logging.FieldEventType, "articles_discovered"),
	)
	return articles
}

// ErrNoMedia marks an item without an audio link.
var ErrNoMedia = errors.New("no audio link")

// finish derives the file name and validates the required fields.
func finish(article episode.Article) (episode.Article, error) {
	if strings.TrimSpace(article.MediaURL) == "" {
		return article, services.Wrap(services.ErrValidation, stageSource, "parse item", article.URL, ErrNoMedia)
	}
	name, err := episode.FileNameFromMediaURL(article.MediaURL)
	if err != nil {
		return article, services.Wrap(services.ErrValidation, stageSource, "parse item", article.URL, err)
	}
	article.FileName = name
	if strings.TrimSpace(article.Title) == "" {
		return article, services.Wrap(services.ErrValidation, stageSource, "parse item", article.URL, errors.New("missing title"))
	}
	return article, nil
}

func get(ctx context.Context, client *http.Client, userAgent, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", target, resp.Status)
	}
	return resp.Body, nil
}
