// Package handlers contains Telegram bot command handlers and their
// registration logic.
package handlers

import (
	"context"
	"log/slog"

	"github.com/edgard/timerbot/internal/config"
	"github.com/edgard/timerbot/internal/notify"
)

// Notifier is the part of the notification scheduler used by handlers.
type Notifier interface {
	Greet(chatID int64) string
	Arm(ctx context.Context, chatID int64) (notify.Confirmation, error)
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Notifier Notifier
}
