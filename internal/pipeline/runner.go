package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"digestcast/internal/config"
	"digestcast/internal/episode"
	"digestcast/internal/feed"
	"digestcast/internal/logging"
	"digestcast/internal/media/audio"
	"digestcast/internal/notifications"
	"digestcast/internal/objectstore"
	"digestcast/internal/preflight"
	"digestcast/internal/runlog"
	"digestcast/internal/services"
	"digestcast/internal/source"
)

// ErrRunInProgress is returned when another process holds the run lock.
var ErrRunInProgress = errors.New("another digestcast run is already in progress")

// Dependencies are the collaborators a Runner drives. Ledger may be nil;
// Notifier and Checker default to the configured ntfy and HEAD checks.
type Dependencies struct {
	Source   source.Source
	Codec    audio.Codec
	Store    objectstore.Store
	Checker  feed.Availability
	Ledger   *runlog.Store
	Notifier notifications.Service
}

// Summary describes a finished run.
type Summary struct {
	RunID          string
	Episode        string
	Articles       int
	Included       int
	Skipped        int
	FileSize       int64
	Duration       time.Duration
	EpisodeEntries int
	ArticleEntries int
}

// Runner executes digest runs for one configuration.
type Runner struct {
	cfg     *config.Config
	deps    Dependencies
	base    *slog.Logger
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
	logPath string
	checks  func(context.Context, *config.Config) []preflight.Result
}

// Option customizes a Runner.
type Option func(*Runner)

// WithClock overrides the time source used for the episode date and ledger timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithRunIDGenerator overrides run id generation.
func WithRunIDGenerator(fn func() string) Option {
	return func(r *Runner) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// WithLogPath records the per-run log file in the ledger.
func WithLogPath(path string) Option {
	return func(r *Runner) {
		r.logPath = strings.TrimSpace(path)
	}
}

// WithPreflight replaces the preflight checks run before each digest.
func WithPreflight(fn func(context.Context, *config.Config) []preflight.Result) Option {
	return func(r *Runner) {
		r.checks = fn
	}
}

// New validates dependencies and builds a Runner.
func New(cfg *config.Config, deps Dependencies, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("pipeline requires a config")
	}
	if deps.Store == nil {
		return nil, errors.New("pipeline requires an object store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewService(cfg)
	}
	if deps.Checker == nil {
		deps.Checker = feed.NewHTTPAvailability(time.Duration(cfg.Feed.HeadTimeoutSeconds)*time.Second, cfg.Source.UserAgent)
	}
	r := &Runner{
		cfg:    cfg,
		deps:   deps,
		base:   logger,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		now:    time.Now,
		newID:  uuid.NewString,
		checks: preflight.RunAll,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run performs one full digest for today's date.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if r.deps.Source == nil || r.deps.Codec == nil {
		return Summary{}, errors.New("pipeline run requires a source and a codec")
	}
	unlock, err := r.lock()
	if err != nil {
		return Summary{}, err
	}
	defer unlock()

	started := r.now()
	summary := Summary{
		RunID:   r.newID(),
		Episode: started.Format(episode.FileNameLayout),
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger).With(logging.String(logging.FieldEpisode, summary.Episode))

	r.beginLedger(ctx, logger, summary, started)
	logger.Info("digest run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("source_kind", r.cfg.Source.Kind),
		logging.String("store_backend", r.cfg.Store.Backend),
	)

	runErr := r.execute(ctx, logger, started, &summary)
	summary.Duration = r.now().Sub(started)
	r.finishLedger(ctx, logger, summary, runErr)

	if runErr != nil {
		logging.ErrorWithContext(logger, "digest run failed", "run_failed",
			logging.Error(runErr),
			logging.String("failure_reason", services.FailureReason(runErr)),
			logging.Alert("run_failure"),
		)
		r.notify(ctx, logger, func(ctx context.Context) error {
			return r.deps.Notifier.NotifyRunFailed(ctx, summary.Episode, runErr)
		})
		return summary, runErr
	}

	logger.Info("digest run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("included", summary.Included),
		logging.Int("skipped", summary.Skipped),
		logging.Int64("file_size_bytes", summary.FileSize),
		logging.Duration("elapsed", summary.Duration),
	)
	r.notify(ctx, logger, func(ctx context.Context) error {
		return r.deps.Notifier.NotifyRunCompleted(ctx, notifications.RunSummary{
			Episode:  summary.Episode,
			Included: summary.Included,
			Skipped:  summary.Skipped,
			Duration: summary.Duration,
		})
	})
	return summary, nil
}

// RebuildFeeds regenerates both feeds from stored history without producing
// a new episode.
func (r *Runner) RebuildFeeds(ctx context.Context) (Summary, error) {
	unlock, err := r.lock()
	if err != nil {
		return Summary{}, err
	}
	defer unlock()

	summary := Summary{RunID: r.newID()}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)
	if err := r.publishFeeds(ctx, logger, &summary); err != nil {
		return summary, err
	}
	return summary, nil
}

func (r *Runner) lock() (func(), error) {
	lock := flock.New(r.cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "pipeline", "acquire lock", r.cfg.LockPath(), err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release run lock", logging.Error(err), logging.String("lock", r.cfg.LockPath()))
		}
	}, nil
}

func (r *Runner) beginLedger(ctx context.Context, logger *slog.Logger, summary Summary, started time.Time) {
	if r.deps.Ledger == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if n, err := r.deps.Ledger.MarkAbandoned(ctx, started); err != nil {
		logger.Warn("failed to close abandoned runs", logging.Error(err))
	} else if n > 0 {
		logging.WarnWithContext(logger, "previous runs marked abandoned", "runs_abandoned",
			logging.Int64("count", n),
			logging.String(logging.FieldImpact, "interrupted runs recorded as failed"),
		)
	}
	if err := r.deps.Ledger.Begin(ctx, summary.RunID, summary.Episode, started, r.logPath); err != nil {
		logging.WarnWithContext(logger, "run ledger unavailable", "ledger_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions"),
			logging.String(logging.FieldImpact, "run history will be missing this run"),
		)
	}
}

func (r *Runner) finishLedger(ctx context.Context, logger *slog.Logger, summary Summary, runErr error) {
	if r.deps.Ledger == nil {
		return
	}
	status := runlog.StatusSucceeded
	outcome := runlog.Outcome{
		Articles: summary.Articles,
		Included: summary.Included,
		Skipped:  summary.Skipped,
		FileSize: summary.FileSize,
	}
	if runErr != nil {
		status = runlog.StatusFailed
		outcome.FailureReason = services.FailureReason(runErr)
		outcome.ErrorMessage = runErr.Error()
	}
	// The run context may already be cancelled; the final row still has to land.
	if err := r.deps.Ledger.Finish(context.WithoutCancel(ctx), summary.RunID, status, r.now(), outcome); err != nil && !errors.Is(err, runlog.ErrRunNotFound) {
		logger.Warn("failed to record run outcome", logging.Error(err))
	}
}

func (r *Runner) notify(ctx context.Context, logger *slog.Logger, send func(context.Context) error) {
	if err := send(context.WithoutCancel(ctx)); err != nil {
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "run result unaffected"),
		)
	}
}
