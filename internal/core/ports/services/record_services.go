package services

import (
	"context"

	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
	"github.com/cashbookhq/cashbook-bot/internal/dto"
)

// RecordSvcFacade is the write path for expense records: authorize, validate,
// commit locally, enqueue the mirror task, notify report subscribers.
type RecordSvcFacade interface {
	// AddRecord creates a record on behalf of userID and returns it with the
	// generated id.
	AddRecord(ctx context.Context, userID int64, req dto.CreateRecordRequest) (*domain.Record, error)

	// UpdateRecordField mutates one whitelisted field;
	// apperrors.ErrConflict for immutable fields.
	UpdateRecordField(ctx context.Context, userID int64, req dto.UpdateRecordFieldRequest) (*domain.Record, error)

	// DeleteRecord removes an owned record and schedules mirror deletion.
	DeleteRecord(ctx context.Context, userID int64, recordID string) error

	// GetRecord loads one record.
	GetRecord(ctx context.Context, recordID string) (*domain.Record, error)

	// ListRecords returns records for the filter, created_at descending.
	ListRecords(ctx context.Context, params dto.ListRecordsParams) ([]domain.Record, error)

	// SearchRecords matches free text, date-sorted descending.
	SearchRecords(ctx context.Context, query string, limit int) ([]domain.Record, error)
}
