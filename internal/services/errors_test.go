package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"digestcast/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "assemble", "decode", "ffmpeg failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"assemble", "decode", "ffmpeg failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected default detail, got %q", err.Error())
	}
}

func TestFailureReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrStorage, "publish", "put", "", errors.New("403")), "storage"},
		{services.Wrap(services.ErrTransient, "acquire", "get", "", nil), "network"},
		{services.Wrap(services.ErrConfiguration, "config", "", "", nil), "configuration"},
		{fmt.Errorf("outer: %w", services.Wrap(services.ErrExternalTool, "export", "", "", nil)), "external_tool"},
		{errors.New("plain"), "unknown"},
	}
	for _, tt := range tests {
		if got := services.FailureReason(tt.err); got != tt.want {
			t.Errorf("FailureReason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestIsSkippable(t *testing.T) {
	if !services.IsSkippable(services.Wrap(services.ErrValidation, "assemble", "decode", "", nil)) {
		t.Fatal("expected validation error to be skippable")
	}
	if services.IsSkippable(services.Wrap(services.ErrStorage, "publish", "", "", nil)) {
		t.Fatal("expected storage error to be fatal")
	}
}
