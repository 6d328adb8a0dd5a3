package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"digestcast/internal/config"
	"digestcast/internal/episode"
	"digestcast/internal/feed"
	"digestcast/internal/logging"
	"digestcast/internal/media/audio"
	"digestcast/internal/notifications"
	"digestcast/internal/preflight"
	"digestcast/internal/runlog"
	"digestcast/internal/services"
	"digestcast/internal/source"
	"digestcast/internal/testsupport"
)

var testFormat = audio.Format{SampleRate: 10, Channels: 1}

var fixedNow = time.Date(2024, time.January, 3, 6, 0, 0, 0, time.Local)

type fakeSource struct {
	results []source.Result
	err     error
	calls   int
}

func (f *fakeSource) FetchToday(context.Context) ([]source.Result, error) {
	f.calls++
	return f.results, f.err
}

type fakeCodec struct {
	durations map[string]time.Duration
}

func (f *fakeCodec) Decode(_ context.Context, path string) (audio.Clip, error) {
	d, ok := f.durations[filepath.Base(path)]
	if !ok {
		return audio.Clip{}, services.Wrap(services.ErrValidation, "codec", "decode", filepath.Base(path), audio.ErrEmptyAudio)
	}
	return audio.Silence(testFormat, d)
}

func (f *fakeCodec) Encode(_ context.Context, composite *audio.Composite, path string) (int64, error) {
	size := composite.Frames() * int64(testFormat.FrameSize())
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		return 0, err
	}
	return size, nil
}

type availableChecker struct{}

func (availableChecker) Check(context.Context, string) (int64, bool, error) { return 1024, true, nil }

type recordingNotifier struct {
	mu        sync.Mutex
	completed []notifications.RunSummary
	failed    []error
	err       error
}

func (n *recordingNotifier) NotifyRunCompleted(_ context.Context, summary notifications.RunSummary) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, summary)
	return n.err
}

func (n *recordingNotifier) NotifyRunFailed(_ context.Context, _ string, err error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, err)
	return n.err
}

func (n *recordingNotifier) TestNotification(context.Context) error { return n.err }

type harness struct {
	cfg      *config.Config
	source   *fakeSource
	store    *testsupport.MemoryStore
	ledger   *runlog.Store
	notifier *recordingNotifier
	runner   *Runner
}

func newHarness(t *testing.T, server *httptest.Server, names ...string) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries(), testsupport.WithFeedBaseURL("https://cdn.example.com/"))
	testsupport.WriteFile(t, cfg.Paths.JinglePath, 16)

	ledger, err := runlog.Open(cfg.LedgerPath())
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { _ = ledger.Close() })

	src := &fakeSource{}
	for _, name := range names {
		src.results = append(src.results, source.Result{
			Ref: server.URL + "/news/" + name,
			Article: episode.Article{
				URL:      server.URL + "/news/" + name,
				Title:    "Story " + name,
				Body:     "First paragraph.\nSecond paragraph.",
				MediaURL: server.URL + "/audio/" + name,
				FileName: name,
			},
		})
	}

	h := &harness{
		cfg:      cfg,
		source:   src,
		store:    testsupport.NewMemoryStore(),
		ledger:   ledger,
		notifier: &recordingNotifier{},
	}
	codec := &fakeCodec{durations: map[string]time.Duration{
		"jingle.mp3": 5 * time.Second,
		"a.mp3":      180 * time.Second,
		"c.mp3":      95 * time.Second,
	}}
	runner, err := New(cfg, Dependencies{
		Source:   src,
		Codec:    codec,
		Store:    h.store,
		Checker:  availableChecker{},
		Ledger:   ledger,
		Notifier: h.notifier,
	}, logging.NewNop(),
		WithClock(func() time.Time { return fixedNow }),
		WithRunIDGenerator(func() string { return "run-1" }),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.runner = runner
	return h
}

func audioServer(t *testing.T, failing ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, name := range failing {
			if strings.HasSuffix(r.URL.Path, "/"+name) {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}
		_, _ = w.Write([]byte("ID3 audio bytes"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunPublishesEpisodeAndFeeds(t *testing.T) {
	srv := audioServer(t)
	h := newHarness(t, srv, "a.mp3", "b.mp3", "c.mp3")
	h.source.results = append(h.source.results, source.Result{Ref: srv.URL + "/news/d", Err: source.ErrNoMedia})

	summary, err := h.runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Episode != "20240103" || summary.RunID != "run-1" {
		t.Fatalf("unexpected summary identity: %+v", summary)
	}
	if summary.Articles != 3 || summary.Included != 2 || summary.Skipped != 1 {
		t.Fatalf("unexpected counters: %+v", summary)
	}
	// jingle + a + jingle + c at 10 Hz mono s16le
	wantSize := int64((5+180+5+95)*10) * 2
	if summary.FileSize != wantSize {
		t.Fatalf("file size = %d, want %d", summary.FileSize, wantSize)
	}
	if summary.EpisodeEntries != 1 || summary.ArticleEntries != 3 {
		t.Fatalf("unexpected feed counts: %+v", summary)
	}

	for _, key := range []string{
		"episodes/20240103.mp3",
		"episodes/20240103.json",
		"htmls/20240103.html",
		feed.EpisodeFeedKey,
		feed.ArticleFeedKey,
	} {
		if _, ok := h.store.Object(key); !ok {
			t.Fatalf("expected %s to be uploaded; puts=%v", key, h.store.Puts())
		}
		if !h.store.IsPublic(key) {
			t.Fatalf("expected %s to be public", key)
		}
	}

	data, _ := h.store.Object("episodes/20240103.json")
	record, err := episode.Unmarshal(data)
	if err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record.Date != "01/03/2024" || record.FileSize != wantSize {
		t.Fatalf("unexpected record header: %+v", record)
	}
	got := []string{record.Articles[0].StartPoint, record.Articles[1].StartPoint, record.Articles[2].StartPoint}
	want := []string{"00:00", "", "03:05"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("start points = %q, want %q", got, want)
		}
	}
	if _, err := os.Stat(filepath.Join(h.cfg.Paths.WorkDir, feed.EpisodeFeedKey)); err != nil {
		t.Fatalf("expected local feed copy: %v", err)
	}

	run, err := h.ledger.Get(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("ledger get: %v", err)
	}
	if run.Status != runlog.StatusSucceeded || run.Included != 2 || run.Skipped != 1 || run.FileSize != wantSize {
		t.Fatalf("unexpected ledger row: %+v", run)
	}
	if len(h.notifier.completed) != 1 || h.notifier.completed[0].Included != 2 {
		t.Fatalf("expected one completion notification, got %+v", h.notifier.completed)
	}
}

func TestRunWithNoArticlesPublishesEmptyEpisode(t *testing.T) {
	srv := audioServer(t)
	h := newHarness(t, srv)

	summary, err := h.runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Included != 0 || summary.FileSize != 0 {
		t.Fatalf("expected empty episode, got %+v", summary)
	}
	data, ok := h.store.Object("episodes/20240103.json")
	if !ok {
		t.Fatal("expected record upload")
	}
	if !strings.Contains(string(data), `"articles":[]`) {
		t.Fatalf("expected empty articles array, got %s", data)
	}
}

func TestRunDownloadFailureAbortsBeforePublishing(t *testing.T) {
	srv := audioServer(t, "c.mp3")
	h := newHarness(t, srv, "a.mp3", "c.mp3")

	_, err := h.runner.Run(context.Background())
	if err == nil {
		t.Fatal("expected download failure")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if puts := h.store.Puts(); len(puts) != 0 {
		t.Fatalf("expected no uploads, got %v", puts)
	}
	run, err := h.ledger.Get(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("ledger get: %v", err)
	}
	if run.Status != runlog.StatusFailed || run.FailureReason != "network" {
		t.Fatalf("unexpected ledger row: %+v", run)
	}
	if len(h.notifier.failed) != 1 || len(h.notifier.completed) != 0 {
		t.Fatalf("expected one failure notification, got %+v / %+v", h.notifier.failed, h.notifier.completed)
	}
}

func TestRunStorageFailureStopsBeforeFeeds(t *testing.T) {
	srv := audioServer(t)
	h := newHarness(t, srv, "a.mp3")
	h.store.FailPut("episodes/20240103.json", errors.New("bucket unavailable"))

	_, err := h.runner.Run(context.Background())
	if !errors.Is(err, services.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if _, ok := h.store.Object(feed.EpisodeFeedKey); ok {
		t.Fatal("feed must not be published after a failed record upload")
	}
}

func TestRunFailsPreflightWithoutJingle(t *testing.T) {
	srv := audioServer(t)
	h := newHarness(t, srv, "a.mp3")
	if err := os.Remove(h.cfg.Paths.JinglePath); err != nil {
		t.Fatal(err)
	}

	_, err := h.runner.Run(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Jingle") {
		t.Fatalf("expected jingle in error, got %v", err)
	}
	if h.source.calls != 0 {
		t.Fatal("source must not be queried when preflight fails")
	}
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	srv := audioServer(t)
	h := newHarness(t, srv, "a.mp3")
	held := flock.New(h.cfg.LockPath())
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("take lock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	if _, err := h.runner.Run(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	if h.source.calls != 0 {
		t.Fatal("source must not be queried without the lock")
	}
}

func TestRunNotificationFailureIsNotFatal(t *testing.T) {
	srv := audioServer(t)
	h := newHarness(t, srv, "a.mp3")
	h.notifier.err = errors.New("ntfy down")

	if _, err := h.runner.Run(context.Background()); err != nil {
		t.Fatalf("notification failure must not fail the run: %v", err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	srv := audioServer(t)
	h := newHarness(t, srv, "a.mp3")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.runner.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	run, getErr := h.ledger.Get(context.Background(), "run-1")
	if getErr != nil {
		t.Fatalf("ledger get: %v", getErr)
	}
	if run.Status != runlog.StatusFailed {
		t.Fatalf("expected failed ledger row, got %+v", run)
	}
}

func TestRunUsesInjectedPreflight(t *testing.T) {
	srv := audioServer(t)
	h := newHarness(t, srv, "a.mp3")
	WithPreflight(func(context.Context, *config.Config) []preflight.Result {
		return []preflight.Result{{Name: "Disk", Detail: "full"}}
	})(h.runner)

	_, err := h.runner.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "Disk: full") {
		t.Fatalf("expected custom preflight failure, got %v", err)
	}

	WithPreflight(nil)(h.runner)
	if _, err := h.runner.Run(context.Background()); err != nil {
		t.Fatalf("Run without preflight: %v", err)
	}
}

func TestRebuildFeedsFromHistory(t *testing.T) {
	srv := audioServer(t)
	h := newHarness(t, srv)
	for _, day := range []time.Time{fixedNow.AddDate(0, 0, -2), fixedNow.AddDate(0, 0, -1)} {
		record := episode.NewRecord(day, []episode.Article{{
			URL:      "https://news.example.com/" + day.Format(episode.FileNameLayout),
			Title:    "Story",
			Body:     "Body",
			MediaURL: "https://media.example.com/" + day.Format(episode.FileNameLayout) + ".mp3",
			FileName: day.Format(episode.FileNameLayout) + ".mp3",
		}}, 2048)
		data, err := record.Marshal()
		if err != nil {
			t.Fatal(err)
		}
		h.store.Seed(episode.RecordKey(record.FileName), data)
	}

	summary, err := h.runner.RebuildFeeds(context.Background())
	if err != nil {
		t.Fatalf("RebuildFeeds: %v", err)
	}
	if summary.EpisodeEntries != 2 || summary.ArticleEntries != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if h.source.calls != 0 {
		t.Fatal("rebuild must not query the source")
	}
	if _, ok := h.store.Object("episodes/20240103.json"); ok {
		t.Fatal("rebuild must not publish a new episode")
	}
}

func TestNewRequiresStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := New(cfg, Dependencies{}, nil); err == nil {
		t.Fatal("expected error without a store")
	}
}

func TestRunPrunesExpiredCacheEntries(t *testing.T) {
	srv := audioServer(t)
	h := newHarness(t, srv, "a.mp3")
	stale := filepath.Join(h.cfg.Paths.CacheDir, "old-story.mp3")
	testsupport.WriteFile(t, stale, 32)
	stamp := fixedNow.AddDate(0, 0, -(h.cfg.Audio.CacheRetentionDays + 1))
	if err := os.Chtimes(stale, stamp, stamp); err != nil {
		t.Fatal(err)
	}

	if _, err := h.runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale cache entry to be pruned, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(h.cfg.Paths.CacheDir, "a.mp3")); err != nil {
		t.Fatalf("fresh cache entry must survive: %v", err)
	}
}
