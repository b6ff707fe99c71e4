package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_CustomWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelInfo,
		Format: "json",
		Writer: &buf,
	})

	logger.Info("test message")

	assert.Contains(t, buf.String(), "test message")
	assert.Contains(t, buf.String(), "\"level\":\"INFO\"")
}

func TestNew_FormatAutoDetection(t *testing.T) {
	var buf bytes.Buffer

	// Production defaults to JSON.
	logger := New(Config{Environment: "production", Writer: &buf})
	logger.Info("hello")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))

	// Development defaults to the pretty handler.
	buf.Reset()
	logger = New(Config{Environment: "development", Writer: &buf})
	logger.Info("hello")
	assert.False(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), "INF")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), "ParseLevel(%q)", tt.input)
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	ctx := context.Background()
	assert.False(t, h.Enabled(ctx, slog.LevelDebug))
	assert.False(t, h.Enabled(ctx, slog.LevelInfo))
	assert.True(t, h.Enabled(ctx, slog.LevelWarn))
	assert.True(t, h.Enabled(ctx, slog.LevelError))
}

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "page created", 0)
	r.AddAttrs(slog.String("page_id", "page-1"))

	assert.NoError(t, h.Handle(context.Background(), r))
	out := buf.String()
	assert.Contains(t, out, "page created")
	assert.Contains(t, out, "page_id=page-1")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestPrettyHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil).WithAttrs([]slog.Attr{slog.String("component", "store")})

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "ready", 0)
	assert.NoError(t, h.Handle(context.Background(), r))
	assert.Contains(t, buf.String(), "component=store")
}

func TestPrettyHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil).WithGroup("http")

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "request", 0)
	r.AddAttrs(slog.String("method", "GET"))
	assert.NoError(t, h.Handle(context.Background(), r))
	assert.Contains(t, buf.String(), "http.method=GET")
}

func TestPrettyHandler_EmptyGroupIsNoOp(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, nil)
	assert.Same(t, h, h.WithGroup(""))
}

func TestFormatLevel(t *testing.T) {
	str, color := formatLevel(slog.LevelError)
	assert.Equal(t, "ERR", str)
	assert.Equal(t, colorRed, color)

	str, _ = formatLevel(slog.LevelDebug)
	assert.Equal(t, "DBG", str)
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Writer: &buf})

	logger.WithError(errors.New("boom")).Error("operation failed")
	assert.Contains(t, buf.String(), "boom")
}

func TestLogger_WithField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Writer: &buf})

	logger.WithField("page_id", "page-9").Info("indexed")
	assert.Contains(t, buf.String(), "page-9")
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Writer: &buf, Level: slog.LevelWarn})

	logger.Info("invisible")
	assert.Empty(t, buf.String())

	logger.Warn("visible")
	assert.Contains(t, buf.String(), "visible")
}
