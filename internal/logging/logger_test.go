package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := parseLevel(tc.raw); got != tc.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestNewLoggerNeverNil(t *testing.T) {
	for _, format := range []string{"", "text", "json", "JSON"} {
		if logger := NewLogger(Config{Format: format, Service: "svc", Version: "v1"}); logger == nil {
			t.Fatalf("format %q: expected logger", format)
		}
	}
}

func TestNewLoggerHonorsLevel(t *testing.T) {
	logger := NewLogger(Config{Format: "text", Level: "warn"})

	if enabled := logger.Enabled(context.Background(), slog.LevelWarn); !enabled {
		t.Fatal("expected warn level to be enabled")
	}
	if enabled := logger.Enabled(context.Background(), slog.LevelInfo); enabled {
		t.Fatal("expected info level to be disabled")
	}
}

func TestNilSafeHelpers(t *testing.T) {
	// Must not panic with a nil logger.
	Info(nil, "info message")
	Warn(nil, "warn message")
	Error(nil, "error message", errors.New("boom"))
	Error(nil, "error without cause", nil)
}

func TestContextLogger(t *testing.T) {
	fallback := NewLogger(Config{})
	scoped := fallback.With(slog.String(FieldRequestID, "r1"))

	ctx := WithLogger(context.Background(), scoped)
	if got := FromContext(ctx, fallback); got != scoped {
		t.Fatal("expected scoped logger from context")
	}
	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Fatal("expected fallback when context carries no logger")
	}
}
