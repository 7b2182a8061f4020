// Package config manages application configuration from environment variables,
// config files, and default values.
package config

import (
	"errors"
	"time"
)

// ErrConfiguration marks every failure to produce a usable configuration.
// The process must not start when Load returns it.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration. Values can be set through
// config.yaml or environment variables prefixed with BOT_ (e.g., BOT_LOGGER_LEVEL).
// The bot token is additionally read from TOKEN.
type Config struct {
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// TelegramConfig holds the Telegram connection settings.
type TelegramConfig struct {
	Token         string        `mapstructure:"token"           validate:"required"`
	PollTimeout   time.Duration `mapstructure:"poll_timeout"    validate:"min=1s,max=1m"`
	SetMyCommands bool          `mapstructure:"set_my_commands"`
	DropPending   bool          `mapstructure:"drop_pending"`
}

// LoggerConfig selects the log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DatabaseConfig points at the SQLite file holding the delivery log.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// NotifyConfig tunes the recurring notification scheduler.
// The period itself is fixed and not configurable.
type NotifyConfig struct {
	FireImmediately bool          `mapstructure:"fire_immediately"`
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout" validate:"min=1s,max=5m"`
}

// SchedulerConfig configures the housekeeping tasks.
type SchedulerConfig struct {
	DeliveryRetention time.Duration         `mapstructure:"delivery_retention" validate:"min=1h"`
	Tasks             map[string]TaskConfig `mapstructure:"tasks"              validate:"dive"`
}

// TaskConfig enables a named task and sets its cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MessagesConfig holds every user-visible text.
type MessagesConfig struct {
	Welcome      string `mapstructure:"welcome"      validate:"required"`
	TimerSet     string `mapstructure:"timer_set"    validate:"required"`
	TimerError   string `mapstructure:"timer_error"  validate:"required"`
	Notification string `mapstructure:"notification" validate:"required"`
	CmdStart     string `mapstructure:"cmd_start"`
	CmdSetTimer  string `mapstructure:"cmd_set_timer"`
}
