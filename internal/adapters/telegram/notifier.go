package telegram

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/cashbookhq/cashbook-bot/internal/core/ports"
)

// Notifier sends messages through the Telegram Bot API. Delivery is
// best-effort; callers treat errors as log-worthy, not fatal.
type Notifier struct {
	bot *tgbotapi.BotAPI

	mu        sync.RWMutex
	logChatID *int64
}

func NewNotifier(token string) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat transport: %w", err)
	}
	return &Notifier{bot: bot}, nil
}

var _ ports.Notifier = (*Notifier)(nil)

// SetLogChat points NotifyLogChat at a chat; nil disables it.
func (n *Notifier) SetLogChat(chatID *int64) {
	n.mu.Lock()
	n.logChatID = chatID
	n.mu.Unlock()
}

func (n *Notifier) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return nil
}

func (n *Notifier) NotifyLogChat(ctx context.Context, text string) error {
	n.mu.RLock()
	chatID := n.logChatID
	n.mu.RUnlock()
	if chatID == nil {
		return nil
	}
	return n.Send(ctx, *chatID, text)
}
