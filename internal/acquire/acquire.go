package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"digestcast/internal/episode"
	"digestcast/internal/fileutil"
	"digestcast/internal/logging"
	"digestcast/internal/services"
)

const stageAcquire = "acquire"

// Acquirer fetches article audio into cacheDir.
type Acquirer struct {
	cacheDir  string
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// Option customizes an Acquirer.
type Option func(*Acquirer)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Acquirer) {
		if client != nil {
			a.client = client
		}
	}
}

// WithUserAgent sets the User-Agent header on downloads.
func WithUserAgent(ua string) Option {
	return func(a *Acquirer) {
		a.userAgent = strings.TrimSpace(ua)
	}
}

// New constructs an Acquirer. timeout bounds a single download.
func New(cacheDir string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Acquirer {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	a := &Acquirer{
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: timeout},
		logger:   logging.NewComponentLogger(logger, "acquirer"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Path returns the cache location for fileName.
func (a *Acquirer) Path(fileName string) string {
	return filepath.Join(a.cacheDir, fileName)
}

// Acquire ensures the article's audio is cached. A cached file means no
// network call. Otherwise the body of media_url is written verbatim.
func (a *Acquirer) Acquire(ctx context.Context, article episode.Article) error {
	if strings.TrimSpace(article.FileName) == "" || strings.ContainsAny(article.FileName, `/\`) {
		return services.Wrap(services.ErrValidation, stageAcquire, "resolve cache path",
			fmt.Sprintf("Invalid file name %q", article.FileName), nil)
	}
	ctx = services.WithArticle(services.WithStage(ctx, stageAcquire), article.FileName)
	logger := logging.WithContext(ctx, a.logger)

	target := a.Path(article.FileName)
	cached, err := fileutil.Exists(target)
	if err != nil {
		return services.Wrap(services.ErrStorage, stageAcquire, "stat cache", "Failed to inspect audio cache", err)
	}
	if cached {
		logger.Debug("audio cache hit", logging.String(logging.FieldEventType, "cache_hit"))
		return nil
	}

	if err := os.MkdirAll(a.cacheDir, 0o755); err != nil {
		return services.Wrap(services.ErrStorage, stageAcquire, "create cache dir", "Failed to create audio cache directory", err)
	}

	started := time.Now()
	written, err := a.download(ctx, article.MediaURL, target)
	if err != nil {
		return err
	}
	logger.Info("audio downloaded",
		logging.Int64("file_size_bytes", written),
		logging.Duration("duration", time.Since(started)),
		logging.String(logging.FieldEventType, "audio_downloaded"),
	)
	return nil
}

// AcquireAll acquires articles sequentially in source order and stops at the
// first failure.
func (a *Acquirer) AcquireAll(ctx context.Context, articles []episode.Article) error {
	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.Acquire(ctx, article); err != nil {
			return err
		}
	}
	return nil
}

func (a *Acquirer) download(ctx context.Context, mediaURL, target string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, stageAcquire, "build request", "Invalid media URL", err)
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, stageAcquire, "download", "Audio download failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, services.Wrap(services.ErrTransient, stageAcquire, "download",
			fmt.Sprintf("Audio download returned %s", resp.Status), nil)
	}
	written, err := fileutil.WriteAtomic(target, resp.Body, 0o644)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, stageAcquire, "write cache", "Failed to store downloaded audio", err)
	}
	return written, nil
}
