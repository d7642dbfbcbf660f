package slogtools

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestNewLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.LevelWarn, &buf)

	ctx := context.Background()
	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))
	assert.True(t, logger.With("k", "v").Enabled(ctx, slog.LevelError))
	assert.False(t, logger.WithGroup("g").Enabled(ctx, slog.LevelDebug))
}

func TestNewLoggerWritesThroughLgr(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.LevelInfo, &buf)

	logger.With("path", "todo.ser").WithGroup("stats").Info("saved tasks", "count", 3)
	logger.Debug("hidden")
	logger.Error("could not save", "err", "disk full")

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2, out)
	assert.Contains(t, lines[0], "[INFO]")
	assert.True(t, strings.HasSuffix(lines[0], "saved tasks path=todo.ser stats.count=3"), lines[0])
	assert.Contains(t, lines[1], "[ERROR]")
	assert.True(t, strings.HasSuffix(lines[1], `could not save err="disk full"`), lines[1])
	assert.NotContains(t, out, "hidden")
}

func TestNewLoggerDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.LevelDebug, &buf)

	logger.Debug("loaded", slog.Group("snap", "count", 0, "name", ""))
	logger.Warn("skipped rows")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG]")
	assert.Contains(t, out, `loaded snap.count=0 snap.name=""`)
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "skipped rows")
}

func TestLgrLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", lgrLevel(slog.LevelDebug))
	assert.Equal(t, "INFO", lgrLevel(slog.LevelInfo))
	assert.Equal(t, "WARN", lgrLevel(slog.LevelWarn))
	assert.Equal(t, "ERROR", lgrLevel(slog.LevelError+4))
}
