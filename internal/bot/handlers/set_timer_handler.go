package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSetTimerHandler returns a handler for the /set_timer command.
func NewSetTimerHandler(deps HandlerDeps) bot.HandlerFunc {
	return setTimerHandler{deps}.Handle
}

// setTimerHandler arms the hourly notification for the requesting chat.
type setTimerHandler struct {
	deps HandlerDeps
}

func (h setTimerHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "set_timer")

	if update.Message == nil {
		log.WarnContext(ctx, "Set timer handler received update without message", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /set_timer command", "chat_id", chatID)

	conf, err := h.deps.Notifier.Arm(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to arm timer", "error", err, "chat_id", chatID)
		reply(ctx, b, log, chatID, formatError(h.deps.Config.Messages.TimerError, err))
		return
	}

	log.InfoContext(ctx, "Timer set for chat", "chat_id", chatID, "timer_id", conf.TimerID, "replaced", conf.Replaced)
	reply(ctx, b, log, chatID, h.deps.Config.Messages.TimerSet)
}

// formatError fills the configured error template. Templates without a verb
// are sent as is.
func formatError(template string, err error) string {
	if !strings.Contains(template, "%") {
		return template
	}
	return fmt.Sprintf(template, err)
}
