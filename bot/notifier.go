// Package bot provides a wrapper for the Telegram bot to implement BotNotifier interface
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ErrDisabled is returned when no Telegram bot is configured
var ErrDisabled = errors.New("telegram bot disabled")

// Notifier adapts Bot to services.BotNotifier. A notification handle is a
// Telegram chat id stored as a string.
type Notifier struct {
	bot *Bot
}

// NewNotifier creates a new bot notifier; b may be nil when the bot is disabled
func NewNotifier(b *Bot) *Notifier {
	return &Notifier{bot: b}
}

// SendNotification sends a notification to the admin chat
func (n *Notifier) SendNotification(message string) {
	if n.bot == nil {
		return
	}
	n.bot.SendNotification(message)
}

// SendPersonalNotification sends a titled notification to the chat behind handle
func (n *Notifier) SendPersonalNotification(ctx context.Context, handle, title, body string) error {
	chatID, err := parseHandle(handle)
	if err != nil {
		return err
	}
	if n.bot == nil {
		return ErrDisabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return n.bot.SendPersonalNotification(chatID, formatMessage(title, body))
}

func formatMessage(title, body string) string {
	return fmt.Sprintf("⚠️ *%s*\n\n%s", title, body)
}

func parseHandle(handle string) (int64, error) {
	chatID, err := strconv.ParseInt(handle, 10, 64)
	if err != nil || chatID == 0 {
		return 0, fmt.Errorf("invalid notification handle %q", handle)
	}
	return chatID, nil
}

func handleFor(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// Ensure Notifier implements the BotNotifier interface
var _ interface {
	SendNotification(message string)
	SendPersonalNotification(ctx context.Context, handle, title, body string) error
} = (*Notifier)(nil)
