package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"digestcast/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckReadableFile(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "jingle.mp3")
	if err := os.WriteFile(full, []byte("ID3"), 0o644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.mp3")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		path   string
		passed bool
		detail string
	}{
		{name: "readable", path: full, passed: true, detail: "readable"},
		{name: "empty", path: empty, detail: "empty file"},
		{name: "missing", path: filepath.Join(dir, "nope.mp3"), detail: "does not exist"},
		{name: "directory", path: dir, detail: "not a regular file"},
		{name: "unset", path: "", detail: "not configured"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := CheckReadableFile("Jingle", tc.path)
			if result.Passed != tc.passed {
				t.Fatalf("passed = %v, want %v (%s)", result.Passed, tc.passed, result.Detail)
			}
			if !strings.Contains(result.Detail, tc.detail) {
				t.Fatalf("detail %q does not mention %q", result.Detail, tc.detail)
			}
		})
	}
}

func TestCheckEndpoint(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		if r.URL.Path == "/down" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ok := CheckEndpoint(context.Background(), "Source", srv.URL+"/", "digestcast-test", time.Second)
	if !ok.Passed {
		t.Fatalf("expected pass, got %s", ok.Detail)
	}
	if gotAgent != "digestcast-test" {
		t.Fatalf("user agent = %q", gotAgent)
	}

	down := CheckEndpoint(context.Background(), "Source", srv.URL+"/down", "", time.Second)
	if down.Passed || !strings.Contains(down.Detail, "503") {
		t.Fatalf("expected 503 failure, got %#v", down)
	}

	missing := CheckEndpoint(context.Background(), "Source", " ", "", time.Second)
	if missing.Passed || missing.Detail != "Missing URL" {
		t.Fatalf("expected missing URL failure, got %#v", missing)
	}
}

func TestRunAllPassesWithPreparedConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	testsupport.WriteFile(t, cfg.Paths.JinglePath, 64)

	results := RunAll(context.Background(), cfg)
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %s", Summarize(failed))
	}
	names := make(map[string]bool, len(results))
	for _, result := range results {
		names[result.Name] = true
	}
	for _, want := range []string{"Work directory", "Audio cache", "State directory", "Jingle", "Object store directory", "FFmpeg", "FFprobe"} {
		if !names[want] {
			t.Fatalf("missing check %q in %#v", want, results)
		}
	}
}

func TestRunAllReportsMissingJingleAndBinary(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffprobe"))
	cfg.Audio.FFmpegBinary = "digestcast-missing-ffmpeg"

	failed := Failed(RunAll(context.Background(), cfg))
	if len(failed) != 2 {
		t.Fatalf("expected 2 failures, got %#v", failed)
	}
	summary := Summarize(failed)
	if !strings.Contains(summary, "Jingle:") || !strings.Contains(summary, "FFmpeg:") {
		t.Fatalf("unexpected summary %q", summary)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil results, got %#v", results)
	}
}
