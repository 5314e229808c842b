package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextFallsBackToNop(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil {
		t.Fatal("FromContext returned nil")
	}
	// Must not panic.
	l.Info("ignored", "k", "v")
}

func TestWithLoggerRoundTrip(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	zl := NewFromZap(zap.New(core))

	ctx := WithLogger(context.Background(), zl)
	FromContext(ctx).Warn("render failed", "tile", "TEST/50/0/0")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Message != "render failed" {
		t.Errorf("Unexpected message %q", entries[0].Message)
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("Expected warn level, got %v", entries[0].Level)
	}
	if got := entries[0].ContextMap()["tile"]; got != "TEST/50/0/0" {
		t.Errorf("Expected tile field, got %v", got)
	}
}

func TestToZapLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"nonsense", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := toZapLevel(tt.in); got != tt.want {
			t.Errorf("toZapLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
