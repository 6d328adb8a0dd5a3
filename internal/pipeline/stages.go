package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"digestcast/internal/acquire"
	"digestcast/internal/assemble"
	"digestcast/internal/audiocache"
	"digestcast/internal/episode"
	"digestcast/internal/feed"
	"digestcast/internal/logging"
	"digestcast/internal/preflight"
	"digestcast/internal/services"
	"digestcast/internal/source"
)

const (
	stagePreflight = "preflight"
	stageFetch     = "fetch"
	stageAcquire   = "acquire"
	stageAssemble  = "assemble"
	stagePublish   = "publish"
	stageFeeds     = "feeds"
)

func (r *Runner) execute(ctx context.Context, logger *slog.Logger, day time.Time, summary *Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.runPreflight(ctx, logger); err != nil {
		return err
	}

	articles, err := r.fetch(ctx, logger)
	if err != nil {
		return err
	}
	summary.Articles = len(articles)

	acquirer := acquire.New(r.cfg.Paths.CacheDir,
		time.Duration(r.cfg.Audio.DownloadTimeoutSeconds)*time.Second,
		r.base,
		acquire.WithUserAgent(r.cfg.Source.UserAgent),
	)
	if err := r.stage(ctx, logger, stageAcquire, func(ctx context.Context) error {
		return acquirer.AcquireAll(ctx, articles)
	}); err != nil {
		return err
	}

	var result assemble.Result
	audioPath := filepath.Join(r.cfg.EpisodesDir(), summary.Episode+".mp3")
	if err := r.stage(ctx, logger, stageAssemble, func(ctx context.Context) error {
		jingle, err := assemble.LoadJingle(ctx, r.deps.Codec, r.cfg.Paths.JinglePath)
		if err != nil {
			return err
		}
		assembler := assemble.New(r.deps.Codec, acquirer.Path, r.base)
		result, err = assembler.Assemble(ctx, articles, jingle)
		if err != nil {
			return err
		}
		summary.FileSize, err = assembler.Export(ctx, result, audioPath)
		return err
	}); err != nil {
		return err
	}
	summary.Included = len(result.Included)
	summary.Skipped = len(result.Skipped)

	record := episode.NewRecord(day, result.Articles, summary.FileSize)
	if err := r.stage(ctx, logger, stagePublish, func(ctx context.Context) error {
		renderer, err := episode.NewRenderer(r.cfg.Paths.TemplatePath, r.cfg.Feed.TitleFormat)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, stagePublish, "load template", r.cfg.Paths.TemplatePath, err)
		}
		publisher := episode.NewPublisher(r.deps.Store, renderer, r.cfg.EpisodesDir(), r.cfg.HTMLDir(), r.base)
		return publisher.Publish(ctx, record, audioPath)
	}); err != nil {
		return err
	}

	if err := r.publishFeeds(ctx, logger, summary); err != nil {
		return err
	}
	r.pruneCache(ctx)
	return nil
}

// pruneCache drops cached audio past the retention window. Failures are
// logged by audiocache and never fail the run.
func (r *Runner) pruneCache(ctx context.Context) {
	retention := time.Duration(r.cfg.Audio.CacheRetentionDays) * 24 * time.Hour
	logger := logging.NewComponentLogger(logging.WithContext(ctx, r.base), "audiocache")
	audiocache.Prune(ctx, r.cfg.Paths.CacheDir, retention, r.now(), logger)
}

func (r *Runner) runPreflight(ctx context.Context, logger *slog.Logger) error {
	if r.checks == nil {
		return nil
	}
	failed := preflight.Failed(r.checks(ctx, r.cfg))
	if len(failed) == 0 {
		return nil
	}
	for _, result := range failed {
		logger.Error("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldEventType, "preflight_failed"),
		)
	}
	return services.Wrap(services.ErrConfiguration, stagePreflight, "run checks", preflight.Summarize(failed), nil)
}

func (r *Runner) fetch(ctx context.Context, logger *slog.Logger) ([]episode.Article, error) {
	var articles []episode.Article
	err := r.stage(ctx, logger, stageFetch, func(ctx context.Context) error {
		results, err := r.deps.Source.FetchToday(ctx)
		if err != nil {
			return err
		}
		articles = source.Articles(ctx, results, r.base)
		logger.Info("articles discovered",
			logging.Int("candidates", len(results)),
			logging.Int("articles", len(articles)),
		)
		return nil
	})
	return articles, err
}

func (r *Runner) publishFeeds(ctx context.Context, logger *slog.Logger, summary *Summary) error {
	return r.stage(ctx, logger, stageFeeds, func(ctx context.Context) error {
		publisher := feed.NewPublisher(r.deps.Store, feed.ChannelFromConfig(r.cfg.Feed), feed.Limits{
			Episodes:       r.cfg.Feed.EpisodeLimit,
			Articles:       r.cfg.Feed.ArticleLimit,
			ArticleHistory: r.cfg.Feed.ArticleHistoryLimit,
		}, r.deps.Checker, r.cfg.Paths.WorkDir, r.base)
		publisher.SetClock(r.now)

		var err error
		if summary.EpisodeEntries, err = publisher.PublishEpisodeFeed(ctx); err != nil {
			return err
		}
		summary.ArticleEntries, err = publisher.PublishArticleFeed(ctx)
		return err
	})
}

// stage runs fn with the stage recorded on the context and logs its timing.
func (r *Runner) stage(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stageCtx := services.WithStage(ctx, name)
	stageLogger := logger.With(logging.String(logging.FieldStage, name))
	start := r.now()
	stageLogger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
	if err := fn(stageCtx); err != nil {
		stageLogger.Debug("stage aborted", logging.Error(err))
		return err
	}
	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", r.now().Sub(start)),
	)
	return nil
}
