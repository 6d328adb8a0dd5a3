package main

import (
	"io"
	"strings"
	"testing"
	"time"

	"digestcast/internal/deps"
	"digestcast/internal/preflight"
	"digestcast/internal/runlog"
)

func TestRenderCheckSectionPadsLabelsAndCountsPassing(t *testing.T) {
	statuses := []deps.Status{
		{Name: "FFmpeg", Command: "/usr/bin/ffmpeg", Available: true},
		{Name: "FFprobe", Command: "ffprobe", Detail: "binary \"ffprobe\" not found"},
	}
	got := renderCheckSection("Dependencies", dependencyLines(statuses), false)
	want := []string{
		"== Dependencies (1/2 ok) ==",
		"  FFmpeg:  [OK] found at /usr/bin/ffmpeg",
		"  FFprobe: [ERROR] binary \"ffprobe\" not found",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("section mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderCheckSectionColorsByResult(t *testing.T) {
	results := []preflight.Result{
		{Name: "Jingle", Passed: true, Detail: "readable"},
		{Name: "Work directory", Passed: false, Detail: "not writable"},
	}
	got := renderCheckSection("Preflight", preflightLines(results), true)
	if len(got) != 3 {
		t.Fatalf("expected header and two lines, got %q", got)
	}
	if !strings.HasPrefix(got[0], ansiBlue) {
		t.Fatalf("expected blue header, got %q", got[0])
	}
	if !strings.HasPrefix(got[1], ansiGreen) || !strings.HasSuffix(got[1], ansiReset) {
		t.Fatalf("expected green passing line, got %q", got[1])
	}
	if !strings.HasPrefix(got[2], ansiRed) {
		t.Fatalf("expected red failing line, got %q", got[2])
	}
}

func TestRenderRunsTableColorsStatus(t *testing.T) {
	started := time.Date(2024, time.January, 3, 6, 0, 0, 0, time.UTC)
	runs := []runlog.Run{
		{Episode: "20240103", Status: runlog.StatusFailed, StartedAt: started, FinishedAt: started.Add(time.Minute), FailureReason: "storage"},
		{Episode: "20240102", Status: runlog.StatusRunning, StartedAt: started.Add(-24 * time.Hour)},
	}
	plain := renderRunsTable(runs, false)
	if strings.Contains(plain, ansiRed) {
		t.Fatalf("unexpected colour in plain table:\n%s", plain)
	}
	requireContains(t, plain, "storage")

	requireContains(t, plain, "2 runs")
	requireContains(t, plain, "0 ok, 1 failed")

	colored := renderRunsTable(runs, true)
	requireContains(t, colored, ansiRed+"failed"+ansiReset)
	requireContains(t, colored, ansiYellow+"running"+ansiReset)
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		512:     "512 B",
		2048:    "2.0 KiB",
		3 << 20: "3.0 MiB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Fatalf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
