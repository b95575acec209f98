package repositories

import (
	"context"

	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
)

// RecordReader defines read operations for expense records.
type RecordReader interface {
	// FindRecordByID retrieves a record; apperrors.ErrNotFound when absent.
	FindRecordByID(ctx context.Context, recordID string) (*domain.Record, error)

	// FindRecords retrieves records matching the filter, created_at descending.
	FindRecords(ctx context.Context, filter domain.RecordFilter) ([]domain.Record, error)

	// SearchRecords matches query against supplier, direction and description,
	// sorted by parsed record date descending.
	SearchRecords(ctx context.Context, query string, limit int) ([]domain.Record, error)
}

// RecordWriter defines write operations for expense records.
type RecordWriter interface {
	// SaveRecord inserts a record, or fully replaces it when the id exists
	// (used by the sheet-ingest upsert path).
	SaveRecord(ctx context.Context, record domain.Record) error

	// UpdateRecordField sets one whitelisted field and bumps updated_at.
	UpdateRecordField(ctx context.Context, recordID string, field domain.RecordField, value any) error

	// DeleteRecord removes a record; apperrors.ErrNotFound when absent.
	DeleteRecord(ctx context.Context, recordID string) error
}

// RecordAggregator exposes the statistical aggregates used by dashboards.
type RecordAggregator interface {
	// SupplierTotals sums record amounts per supplier within the worksheet.
	SupplierTotals(ctx context.Context, spreadsheetID, sheetName string) (map[string]string, error)

	// CountRecords reports the number of stored records.
	CountRecords(ctx context.Context) (int, error)
}

// RecordRepositoryFacade combines all record repository interfaces.
type RecordRepositoryFacade interface {
	RecordReader
	RecordWriter
	RecordAggregator
}
