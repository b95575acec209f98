package services

import (
	"context"

	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
)

// ReconcileSvcFacade re-aligns the local store and the spreadsheet mirror.
type ReconcileSvcFacade interface {
	// ReconcilePayments runs the two-phase pull/push pass over the role
	// worksheets. Additive only; divergent rows are left unchanged.
	ReconcilePayments(ctx context.Context) (domain.ReconcileStats, error)

	// InitializeRecords ingests every worksheet of the spreadsheet (or of all
	// accessible spreadsheets when spreadsheetID is empty): backfills ids,
	// normalizes dates and amounts, upserts into the store and rewrites each
	// worksheet in one batch.
	InitializeRecords(ctx context.Context, spreadsheetID string) (domain.ReconcileStats, error)
}
