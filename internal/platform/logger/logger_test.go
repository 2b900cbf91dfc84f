package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewRespectsLevel(t *testing.T) {
	t.Parallel()

	buf := &TestLogBuffer{}
	l := New(buf, "warn")
	l.Info("hidden")
	l.Warn("shown", slog.String("component", "test"))

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
	assert.Equal(t, "test", entries[0]["component"])
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	fallback, _ := GetTestLogger(t)
	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))

	ctx, buf := NewLogCaptureContext(t)
	ctx = WithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))

	FromContextOrDefault(ctx, fallback).Info("hello")
	AssertLogContains(t, buf, `"request_id":"req-123"`)
	AssertLogContains(t, buf, `"msg":"hello"`)
}

func TestFromContextDefault(t *testing.T) {
	t.Parallel()
	assert.NotNil(t, FromContext(context.Background()))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}
