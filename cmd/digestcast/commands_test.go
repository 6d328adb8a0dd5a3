package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"digestcast/internal/episode"
	"digestcast/internal/feed"
	"digestcast/internal/runlog"
)

func TestRootRejectsArguments(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"today"}, env.configPath); err == nil {
		t.Fatal("expected error for unexpected argument")
	}
}

func TestRunsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"runs"}, env.configPath)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	store, err := runlog.Open(env.cfg.LedgerPath())
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	ctx := context.Background()
	started := time.Date(2024, time.January, 3, 6, 0, 0, 0, time.UTC)
	if err := store.Begin(ctx, "run-ok", "20240103", started, ""); err != nil {
		t.Fatal(err)
	}
	if err := store.Finish(ctx, "run-ok", runlog.StatusSucceeded, started.Add(90*time.Second), runlog.Outcome{Articles: 5, Included: 4, Skipped: 1, FileSize: 3 << 20}); err != nil {
		t.Fatal(err)
	}
	if err := store.Begin(ctx, "run-bad", "20240104", started.Add(24*time.Hour), ""); err != nil {
		t.Fatal(err)
	}
	if err := store.Finish(ctx, "run-bad", runlog.StatusFailed, started.Add(24*time.Hour+time.Minute), runlog.Outcome{FailureReason: "network"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	out, _, err = runCLI(t, []string{"runs"}, env.configPath)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	for _, want := range []string{"20240103", "succeeded", "3.0 MiB", "1m30s", "20240104", "failed", "network", "2 runs", "1 ok, 1 failed"} {
		requireContains(t, out, want)
	}
	if strings.Index(out, "20240104") > strings.Index(out, "20240103") {
		t.Fatalf("expected newest run first:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"runs", "--limit", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("runs --limit: %v", err)
	}
	if strings.Contains(out, "20240103") {
		t.Fatalf("expected limit to hide older run:\n%s", out)
	}
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check", "--offline"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "== Dependencies (2/2 ok) ==")
	requireContains(t, out, "FFmpeg:")
	requireContains(t, out, "All checks passed")

	if err := os.Remove(env.cfg.Paths.JinglePath); err != nil {
		t.Fatal(err)
	}
	out, _, err = runCLI(t, []string{"check", "--offline"}, env.configPath)
	if err == nil {
		t.Fatal("expected check to fail without a jingle")
	}
	requireContains(t, err.Error(), "Jingle")
	requireContains(t, out, "[ERROR]")
}

func TestFeedCommandRebuildsFromHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "2048")
		w.WriteHeader(http.StatusOK)
	}))
	defer media.Close()

	day := time.Date(2024, time.January, 1, 6, 0, 0, 0, time.Local)
	record := episode.NewRecord(day, []episode.Article{{
		URL:        "https://news.example.com/a/story.html",
		Title:      "Story",
		Body:       "Line one\nLine two",
		MediaURL:   media.URL + "/audio/story.mp3",
		FileName:   "story.mp3",
		StartPoint: "00:00",
	}}, 4096)
	data, err := record.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	recordPath := filepath.Join(env.cfg.Store.Dir, episode.RecordKey(record.FileName))
	if err := os.MkdirAll(filepath.Dir(recordPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(recordPath, data, 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"feed"}, env.configPath)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	requireContains(t, out, "Rebuilt feeds: 1 episodes, 1 articles")

	for _, key := range []string{feed.EpisodeFeedKey, feed.ArticleFeedKey} {
		doc, err := os.ReadFile(filepath.Join(env.cfg.Store.Dir, key))
		if err != nil {
			t.Fatalf("expected %s in store: %v", key, err)
		}
		requireContains(t, string(doc), "<rss")
	}
}

func TestTestNotifyDisabled(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Notifications disabled")
}

func TestLogsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"logs"}, env.configPath); err == nil {
		t.Fatal("expected error when no run logs exist")
	}

	logPath := filepath.Join(env.cfg.Paths.LogDir, "digestcast-20240103T060000Z.log")
	if err := os.WriteFile(logPath, []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := runCLI(t, []string{"logs", "-n", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if out != "two\nthree\n" {
		t.Fatalf("unexpected latest log output %q", out)
	}

	store, err := runlog.Open(env.cfg.LedgerPath())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Begin(context.Background(), "run-7", "20240103", time.Now(), logPath); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	out, _, err = runCLI(t, []string{"logs", "run-7", "-n", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("logs run-7: %v", err)
	}
	if out != "three\n" {
		t.Fatalf("unexpected run log output %q", out)
	}
	if _, _, err := runCLI(t, []string{"logs", "missing"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown run id")
	}
}
