package services

import (
	"context"

	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
)

// MetadataSvcFacade fronts spreadsheet metadata lookups with a TTL cache.
// Lookups never return a hard error: on gateway failure a stale entry is
// served when one exists, otherwise a placeholder result with an explanatory
// title.
type MetadataSvcFacade interface {
	GetSpreadsheets(ctx context.Context, force bool) []domain.SpreadsheetHandle
	GetWorksheets(ctx context.Context, spreadsheetID string, force bool) []domain.WorksheetInfo
	Invalidate(spreadsheetID string)
	InvalidateAll()
}
