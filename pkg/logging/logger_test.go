package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestCompactHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.With("component", "scan").WithGroup("cache").Info("parse cache hit", "path", "src/App.vue", "size", 3)

	out := buf.String()
	if !strings.HasPrefix(out, "[INFO]  ") {
		t.Errorf("Expected INFO prefix, got %q", out)
	}
	if !strings.Contains(out, "parse cache hit | component=scan cache.path=src/App.vue cache.size=3") {
		t.Errorf("Unexpected attribute formatting: %q", out)
	}
}

func TestCompactHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected info to be filtered, got %q", buf.String())
	}

	log.Warn("shown", "error", "boom")
	if !strings.Contains(buf.String(), `error="boom"`) {
		t.Errorf("Expected quoted error attribute, got %q", buf.String())
	}
}

func TestNew_FollowsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetLevel(slog.LevelInfo)
	defer SetOutput(nil)

	log := New("engine")

	SetLevel(slog.LevelWarn)
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("Expected info to be filtered, got %q", buf.String())
	}

	SetLevel(slog.LevelDebug)
	ctx := WithRunID(context.Background(), "0123456789abcdef")
	log.DebugContext(ctx, "detector finished", "detector", "orphans")

	out := buf.String()
	if !strings.Contains(out, "component=engine") {
		t.Errorf("Expected component attribute, got %q", out)
	}
	if !strings.Contains(out, "run=01234567") {
		t.Errorf("Expected shortened run ID, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{"trace", LevelTrace, false},
		{"DEBUG", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
