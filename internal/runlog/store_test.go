package runlog

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state", "runs.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBeginFinishRecent(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	base := time.Date(2024, 1, 3, 6, 0, 0, 0, time.UTC)

	if err := store.Begin(ctx, "run-1", "20240102", base.Add(-24*time.Hour), "/logs/1.log"); err != nil {
		t.Fatal(err)
	}
	if err := store.Finish(ctx, "run-1", StatusFailed, base.Add(-23*time.Hour), Outcome{FailureReason: "storage", ErrorMessage: "bucket missing"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Begin(ctx, "run-2", "20240103", base, "/logs/2.log"); err != nil {
		t.Fatal(err)
	}
	if err := store.Finish(ctx, "run-2", StatusSucceeded, base.Add(90*time.Second), Outcome{Articles: 5, Included: 4, Skipped: 1, FileSize: 2048}); err != nil {
		t.Fatal(err)
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	latest := runs[0]
	if latest.ID != "run-2" || latest.Status != StatusSucceeded || latest.Included != 4 || latest.Skipped != 1 || latest.FileSize != 2048 {
		t.Fatalf("unexpected latest run %+v", latest)
	}
	if latest.Duration() != 90*time.Second {
		t.Fatalf("unexpected duration %v", latest.Duration())
	}
	if runs[1].FailureReason != "storage" || runs[1].ErrorMessage != "bucket missing" {
		t.Fatalf("unexpected failed run %+v", runs[1])
	}

	limited, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].ID != "run-2" {
		t.Fatalf("unexpected limited runs %+v", limited)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store := openTestStore(t)
	err := store.Finish(context.Background(), "missing", StatusSucceeded, time.Now(), Outcome{})
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound from Get, got %v", err)
	}
}

func TestMarkAbandoned(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	if err := store.Begin(ctx, "stuck", "20240103", time.Now().Add(-time.Hour), ""); err != nil {
		t.Fatal(err)
	}
	n, err := store.MarkAbandoned(ctx, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 abandoned run, got %d", n)
	}
	run, err := store.Get(ctx, "stuck")
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != StatusFailed || run.FailureReason != "abandoned" {
		t.Fatalf("unexpected run %+v", run)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Begin(context.Background(), "run-1", "20240103", time.Now(), ""); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(context.Background(), "run-1"); err != nil {
		t.Fatalf("expected run to persist: %v", err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	if _, err := Open(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestIsSQLiteBusy(t *testing.T) {
	if isSQLiteBusy(nil) {
		t.Fatal("nil is not busy")
	}
	if !isSQLiteBusy(errors.New("database is locked")) {
		t.Fatal("expected locked message to count as busy")
	}
	if isSQLiteBusy(errors.New("no such table")) {
		t.Fatal("unexpected busy classification")
	}
}
