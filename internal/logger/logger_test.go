package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNew_JSONOutputRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, "warn", true)

	log.Info("dropped")
	log.Warn("kept", "chat_id", int64(42))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, float64(42), record["chat_id"])
}

func TestMiddleware_CallsNextAndLogsUpdate(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, "debug", false)

	called := false
	handler := Middleware(log)(func(_ context.Context, _ *bot.Bot, _ *models.Update) {
		called = true
	})

	handler(context.Background(), nil, &models.Update{
		ID: 9,
		Message: &models.Message{
			ID:   3,
			Chat: models.Chat{ID: 42},
			From: &models.User{ID: 7},
			Text: "/set_timer",
		},
	})

	assert.True(t, called)
	out := buf.String()
	assert.Contains(t, out, "chat_id=42")
	assert.Contains(t, out, "update_type=message")
	assert.Contains(t, out, "Finished processing update")
}

func TestToSlogArgs(t *testing.T) {
	t.Parallel()

	got := toSlogArgs([]any{"name", "job", 7, "seven", "dangling"})
	assert.Equal(t, []any{"name", "job", "7", "seven", "value", "dangling"}, got)
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "...", truncateString("abcdef", 2))
}
