package ports

import "context"

// Notifier delivers best-effort messages through the chat transport. Failures
// are logged by callers; nothing is rolled back on delivery errors.
type Notifier interface {
	// Send delivers text to one chat.
	Send(ctx context.Context, chatID int64, text string) error

	// NotifyLogChat mirrors prominent failures to the configured log chat.
	// A no-op when no log chat is configured.
	NotifyLogChat(ctx context.Context, text string) error
}
