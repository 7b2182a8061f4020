package config

import "time"

// Default values for configuration
const (
	DefaultLogLevel = "info"

	DefaultDBPath = "timerbot.db"

	DefaultPollTimeout     = 10 * time.Second
	DefaultDeliveryTimeout = 30 * time.Second

	DefaultDeliveryRetention = 7 * 24 * time.Hour
)

// Default bot messages
const (
	DefaultWelcomeMessage      = "Hi! I am a bot that sends scheduled messages."
	DefaultTimerSetMessage     = "Timer is set! I will send messages every hour."
	DefaultTimerErrorMessage   = "An error occurred: %v"
	DefaultNotificationMessage = "This is a scheduled message ⏰"

	DefaultCmdStartDescription    = "Say hello"
	DefaultCmdSetTimerDescription = "Send me a message every hour"
)

// DefaultTasks are the housekeeping tasks enabled out of the box.
var DefaultTasks = map[string]any{
	"delivery_cleanup": map[string]any{"enabled": true, "schedule": "0 15 3 * * *"},
	"sql_maintenance":  map[string]any{"enabled": true, "schedule": "0 45 3 * * 0"},
}
