package services

import (
	"context"

	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
)

// ReportSvcFacade fans record mutations out to subscribed chats. Invoked
// synchronously by the coordinators after the local commit.
type ReportSvcFacade interface {
	// Publish delivers the mutation to every enabled, filter-matching
	// subscription. Per-subscriber failures are isolated.
	Publish(ctx context.Context, action domain.RecordAction, record *domain.Record, actor *domain.Identity)

	// Subscribe enables reports for a chat with an optional worksheet filter.
	Subscribe(ctx context.Context, chatID int64, spreadsheetID, sheetName string) error

	// Unsubscribe disables reports for a chat.
	Unsubscribe(ctx context.Context, chatID int64) error
}
