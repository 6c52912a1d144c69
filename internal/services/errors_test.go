package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"twisty/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "transcode", "ffmpeg", "failed", base)
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
	for _, fragment := range []string{"transcode", "ffmpeg", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestFailureKindMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"timeout", services.Wrap(services.ErrTimeout, "browser", "wait ready", "", nil), "timeout"},
		{"tool", services.Wrap(services.ErrExternalTool, "transcode", "ffmpeg", "", errors.New("exit 1")), "external_tool"},
		{"validation", services.Wrap(services.ErrValidation, "job", "validate", "alg empty", nil), "invalid"},
		{"wrapped twice", fmt.Errorf("row 2: %w", services.Wrap(services.ErrTimeout, "browser", "", "", nil)), "timeout"},
		{"canceled", fmt.Errorf("export: %w", context.Canceled), "canceled"},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"plain", errors.New("disk full"), "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.FailureKind(tt.err); got != tt.want {
				t.Fatalf("FailureKind() = %q, want %q", got, tt.want)
			}
		})
	}
}
