package logger

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"rssreader/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadableHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewReadableHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.With(slog.String("component", "render"), slog.String("feed", "news")).
		Info("Feed converted", slog.String("op", "convert"), slog.Int("items", 3))

	line := buf.String()
	assert.Contains(t, line, "INFO [render] (convert): Feed converted | feed=news, items=3")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestReadableHandler_ShortensURLAndQuotesErrors(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewReadableHandler(&buf, nil))

	log.Warn("Fetch failed",
		slog.String("url", "https://news.example.com/very/long/path/to/the/feed/rss.xml"),
		slog.String("error", "timeout exceeded"),
	)

	assert.Contains(t, buf.String(), "url=https://news.example.com/...")
	assert.Contains(t, buf.String(), `error="timeout exceeded"`)
}

func TestReadableHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewReadableHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WARN: shown")
}

func TestReadableHandler_Group(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewReadableHandler(&buf, nil)).WithGroup("http")

	log.Info("request", slog.Int("status", 200))

	assert.Contains(t, buf.String(), "http.status=200")
}

func TestLevelDispatcherHandler_RoutesErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	log := slog.New(NewLevelDispatcherHandler(&out, &errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.Debug("debug message")
	log.Error("error message")

	assert.Contains(t, out.String(), "DEBUG: debug message")
	assert.NotContains(t, out.String(), "error message")
	assert.Contains(t, errOut.String(), "ERROR: error message")
}

func TestNew_WritesToFiles(t *testing.T) {
	dir := t.TempDir()
	log, err := New(config.LoggerConfig{
		Level:     "info",
		File:      filepath.Join(dir, "rssreader.log"),
		ErrorFile: filepath.Join(dir, "rssreader_error.log"),
	})
	require.NoError(t, err)
	log.Info("started")
}

func TestNew_BadPath(t *testing.T) {
	_, err := New(config.LoggerConfig{File: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
