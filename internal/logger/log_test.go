package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"daily-checkin/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestNewHandlerFormats(t *testing.T) {
	var buf bytes.Buffer
	slog.New(newHandler(&buf, "text", slog.LevelInfo)).Info("entry.submit.ok", "id", "pain_20240305")
	assert.Contains(t, buf.String(), "msg=entry.submit.ok")

	buf.Reset()
	slog.New(newHandler(&buf, "json", slog.LevelInfo)).Info("entry.submit.ok", "id", "pain_20240305")
	assert.Contains(t, buf.String(), `"id":"pain_20240305"`)

	buf.Reset()
	slog.New(newHandler(&buf, "json", slog.LevelWarn)).Info("dropped")
	assert.Empty(t, buf.String())
}

func TestInitWritesFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	file := filepath.Join(t.TempDir(), "app.log")
	Init(config.LogConfig{Level: "debug", File: file, MaxSizeMB: 1})
	Debug("hello", "k", "v")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestErrAttr(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(newHandler(&buf, "json", slog.LevelInfo))

	l.Error("entry.write.failed", Err(os.ErrNotExist))
	assert.Contains(t, buf.String(), `"err":"file does not exist"`)

	buf.Reset()
	l.Info("entry.submit.ok", Err(nil))
	assert.NotContains(t, buf.String(), `"err"`)
}
