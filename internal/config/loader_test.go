package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearTokenEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TOKEN", "")
	t.Setenv("BOT_TELEGRAM_TOKEN", "")
}

func TestLoad_MissingTokenFailsFast(t *testing.T) {
	clearTokenEnv(t)

	cfg, err := Load("")
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "Token")
}

func TestLoad_TokenFromEnvironmentWithDefaults(t *testing.T) {
	clearTokenEnv(t)
	t.Setenv("TOKEN", "123456:abcdef")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "123456:abcdef", cfg.Telegram.Token)
	assert.Equal(t, DefaultPollTimeout, cfg.Telegram.PollTimeout)
	assert.True(t, cfg.Telegram.SetMyCommands)
	assert.Equal(t, DefaultLogLevel, cfg.Logger.Level)
	assert.Equal(t, DefaultDBPath, cfg.Database.Path)
	assert.False(t, cfg.Notify.FireImmediately)
	assert.Equal(t, DefaultDeliveryTimeout, cfg.Notify.DeliveryTimeout)
	assert.Equal(t, DefaultDeliveryRetention, cfg.Scheduler.DeliveryRetention)
	assert.Equal(t, DefaultWelcomeMessage, cfg.Messages.Welcome)
	assert.Equal(t, DefaultTimerSetMessage, cfg.Messages.TimerSet)
	assert.Equal(t, DefaultNotificationMessage, cfg.Messages.Notification)

	require.Contains(t, cfg.Scheduler.Tasks, "delivery_cleanup")
	assert.True(t, cfg.Scheduler.Tasks["delivery_cleanup"].Enabled)
	assert.NotEmpty(t, cfg.Scheduler.Tasks["sql_maintenance"].Schedule)
}

func TestLoad_PrefixedTokenVariable(t *testing.T) {
	clearTokenEnv(t)
	t.Setenv("BOT_TELEGRAM_TOKEN", "prefixed-token")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "prefixed-token", cfg.Telegram.Token)
}

func TestLoad_FileAndEnvironmentOverrides(t *testing.T) {
	clearTokenEnv(t)
	t.Setenv("BOT_LOGGER_LEVEL", "debug")

	path := writeConfig(t, `
telegram:
  token: "from-file"
  poll_timeout: 20s
database:
  path: /tmp/timerbot-test.db
notify:
  fire_immediately: true
  delivery_timeout: 45s
messages:
  welcome: "Hello there"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Telegram.Token)
	assert.Equal(t, 20*time.Second, cfg.Telegram.PollTimeout)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "/tmp/timerbot-test.db", cfg.Database.Path)
	assert.True(t, cfg.Notify.FireImmediately)
	assert.Equal(t, 45*time.Second, cfg.Notify.DeliveryTimeout)
	assert.Equal(t, "Hello there", cfg.Messages.Welcome)
	assert.Equal(t, DefaultTimerSetMessage, cfg.Messages.TimerSet)
}

func TestLoad_EnvironmentTokenWinsOverFile(t *testing.T) {
	clearTokenEnv(t)
	t.Setenv("TOKEN", "from-env")

	path := writeConfig(t, "telegram:\n  token: from-file\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown log level", body: "logger:\n  level: verbose\n"},
		{name: "delivery timeout too short", body: "notify:\n  delivery_timeout: 10ms\n"},
		{name: "empty notification text", body: "messages:\n  notification: \"\"\n"},
		{name: "malformed yaml", body: "telegram: [unterminated\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTokenEnv(t)
			t.Setenv("TOKEN", "valid-token")

			_, err := Load(writeConfig(t, tt.body))
			require.ErrorIs(t, err, ErrConfiguration)
		})
	}
}
