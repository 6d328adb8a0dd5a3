package assemble

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"digestcast/internal/episode"
	"digestcast/internal/logging"
	"digestcast/internal/media/audio"
	"digestcast/internal/services"
)

const stageAssemble = "assemble"

// Result is the outcome of one assembly pass.
type Result struct {
	Composite *audio.Composite
	Articles  []episode.Article
	Included  []string
	Skipped   []string
}

// Duration returns the composite length.
func (r Result) Duration() time.Duration {
	if r.Composite == nil {
		return 0
	}
	return time.Duration(r.Composite.Seconds() * float64(time.Second))
}

// Assembler builds composites with a Codec.
type Assembler struct {
	codec  audio.Codec
	path   func(fileName string) string
	logger *slog.Logger
}

// New returns an Assembler. path maps an article file name to its cached audio.
func New(codec audio.Codec, path func(fileName string) string, logger *slog.Logger) *Assembler {
	return &Assembler{
		codec:  codec,
		path:   path,
		logger: logging.NewComponentLogger(logger, "assembler"),
	}
}

// Assemble walks articles in order. Each decodable article receives the
// composite offset before its jingle as start_point, then the jingle and the
// article clip are appended. Articles that fail to decode are logged and
// skipped. The input slice is not modified.
func (a *Assembler) Assemble(ctx context.Context, articles []episode.Article, jingle audio.Clip) (Result, error) {
	ctx = services.WithStage(ctx, stageAssemble)
	composite := audio.NewComposite(jingle.Format())
	result := Result{
		Composite: composite,
		Articles:  make([]episode.Article, len(articles)),
	}
	copy(result.Articles, articles)

	for i := range result.Articles {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		article := &result.Articles[i]
		article.StartPoint = ""
		itemCtx := services.WithArticle(ctx, article.FileName)
		logger := logging.WithContext(itemCtx, a.logger)

		clip, err := a.codec.Decode(itemCtx, a.path(article.FileName))
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return Result{}, err
			}
			if !services.IsSkippable(err) {
				return Result{}, err
			}
			logging.WarnWithContext(logger, "article audio skipped", "decode_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "re-download by deleting the cached file"),
				logging.String(logging.FieldImpact, "article omitted from the composite without a start point"),
			)
			result.Skipped = append(result.Skipped, article.FileName)
			continue
		}

		article.StartPoint = FormatStartPoint(composite.Seconds())
		if err := composite.Append(jingle); err != nil {
			return Result{}, services.Wrap(services.ErrConfiguration, stageAssemble, "append jingle", "Jingle format mismatch", err)
		}
		if err := composite.Append(clip); err != nil {
			return Result{}, services.Wrap(services.ErrExternalTool, stageAssemble, "append article", "Decoded clip format mismatch", err)
		}
		result.Included = append(result.Included, article.FileName)
		logger.Debug("article appended",
			logging.String("start_point", article.StartPoint),
			logging.Duration("duration", clip.Duration()),
		)
	}

	a.logger.Info("composite assembled",
		logging.Int("included", len(result.Included)),
		logging.Int("skipped", len(result.Skipped)),
		logging.Duration("duration", result.Duration()),
		logging.String(logging.FieldEventType, "composite_assembled"),
	)
	return result, nil
}

// Export encodes the composite to path and returns the artifact byte length.
func (a *Assembler) Export(ctx context.Context, result Result, path string) (int64, error) {
	if result.Composite == nil {
		return 0, services.Wrap(services.ErrValidation, stageAssemble, "export", "No composite to export", nil)
	}
	size, err := a.codec.Encode(services.WithStage(ctx, stageAssemble), result.Composite, path)
	if err != nil {
		return 0, err
	}
	a.logger.Info("composite exported",
		logging.String("path", path),
		logging.Int64("file_size_bytes", size),
		logging.String(logging.FieldEventType, "composite_exported"),
	)
	return size, nil
}

// LoadJingle decodes the jingle. Failure is a configuration error since every
// run depends on it.
func LoadJingle(ctx context.Context, codec audio.Codec, path string) (audio.Clip, error) {
	clip, err := codec.Decode(ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return audio.Clip{}, err
		}
		return audio.Clip{}, services.Wrap(services.ErrConfiguration, stageAssemble, "load jingle",
			"Jingle could not be decoded; check paths.jingle_path", err)
	}
	return clip, nil
}
