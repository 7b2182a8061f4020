package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MessageSender is the part of *bot.Bot used for outbound messages.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Sender delivers plain text messages to Telegram chats.
type Sender struct {
	client MessageSender
}

// NewSender returns a Sender backed by client, usually a *bot.Bot.
func NewSender(client MessageSender) (*Sender, error) {
	if client == nil {
		return nil, errors.New("telegram client cannot be nil")
	}
	return &Sender{client: client}, nil
}

// Send sends text to chatID.
func (s *Sender) Send(ctx context.Context, chatID int64, text string) error {
	if _, err := s.client.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return nil
}
