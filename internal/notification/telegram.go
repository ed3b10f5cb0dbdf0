// Package notification delivers match alerts over Telegram. Delivery is
// strictly best-effort; the matching engine works the same with the
// notifier absent.
package notification

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"

	"github.com/astromatch/astromatch/internal/database"
	"github.com/astromatch/astromatch/internal/telemetry"
)

// TelegramNotifier sends a "you matched" message to each side of a new
// match that has a Telegram chat linked to their profile.
type TelegramNotifier struct {
	bot *bot.Bot
}

// NewTelegramNotifier builds the notifier from a bot token.
func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: b}, nil
}

// NotifyMatch messages both users. Sides without a linked chat are
// skipped; send failures are logged and swallowed.
func (n *TelegramNotifier) NotifyMatch(ctx context.Context, a, b *database.ProfileSnapshot) {
	n.send(ctx, a, b)
	n.send(ctx, b, a)
}

func (n *TelegramNotifier) send(ctx context.Context, to, matched *database.ProfileSnapshot) {
	if to.TelegramChatID == nil {
		return
	}

	text := fmt.Sprintf("It's a match! You and %s liked each other.", matched.Name)
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: *to.TelegramChatID,
		Text:   text,
	})
	if err != nil {
		telemetry.GetContextualLogger(ctx).WithError(err).WithFields(map[string]interface{}{
			"user_id": to.UserID,
		}).Warn("Failed to send match notification")
	}
}
