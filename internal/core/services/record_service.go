package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cashbookhq/cashbook-bot/internal/apperrors"
	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
	"github.com/cashbookhq/cashbook-bot/internal/core/ports/repositories"
	portssvc "github.com/cashbookhq/cashbook-bot/internal/core/ports/services"
	"github.com/cashbookhq/cashbook-bot/internal/dto"
	"github.com/cashbookhq/cashbook-bot/internal/middleware"
	"github.com/cashbookhq/cashbook-bot/internal/utils"
)

// RecordService is the record write path: authorize, validate, commit to the
// local store, enqueue the mirror task, notify report subscribers. The local
// store is canonical; the mirror catches up asynchronously.
type RecordService struct {
	recordRepo repositories.RecordRepositoryFacade
	identity   portssvc.IdentitySvcFacade
	mirror     portssvc.MirrorSvcFacade
	report     portssvc.ReportSvcFacade
}

var _ portssvc.RecordSvcFacade = (*RecordService)(nil)

func NewRecordService(
	recordRepo repositories.RecordRepositoryFacade,
	identity portssvc.IdentitySvcFacade,
	mirror portssvc.MirrorSvcFacade,
	report portssvc.ReportSvcFacade,
) *RecordService {
	return &RecordService{
		recordRepo: recordRepo,
		identity:   identity,
		mirror:     mirror,
		report:     report,
	}
}

func (s *RecordService) AddRecord(ctx context.Context, userID int64, req dto.CreateRecordRequest) (*domain.Record, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.identity.Authorize(ctx, userID, domain.CapManageRecords); err != nil {
		return nil, err
	}
	ident, err := s.identity.Identity(ctx, userID)
	if err != nil {
		return nil, err
	}

	spreadsheetID, sheetName := req.SpreadsheetID, req.SheetName
	if spreadsheetID == "" {
		spreadsheetID, sheetName = ident.ActiveSpreadsheetID, ident.ActiveSheetName
	}
	if spreadsheetID == "" || sheetName == "" {
		return nil, fmt.Errorf("%w: no active worksheet selected", apperrors.ErrValidation)
	}

	date := req.Date
	if date == "" {
		date = utils.Today()
	} else {
		if date, err = utils.NormalizeDate(date); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}

	if strings.TrimSpace(req.Supplier) == "" {
		return nil, fmt.Errorf("%w: supplier is required", apperrors.ErrValidation)
	}

	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", apperrors.ErrValidation)
	}

	id, err := utils.NewRecordID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate record id: %w", err)
	}

	now := time.Now().UTC()
	record := domain.Record{
		ID:            id,
		Date:          date,
		Supplier:      strings.TrimSpace(req.Supplier),
		Direction:     strings.TrimSpace(req.Direction),
		Description:   strings.TrimSpace(req.Description),
		Amount:        amount,
		SpreadsheetID: spreadsheetID,
		SheetName:     sheetName,
		UserID:        &userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.recordRepo.SaveRecord(ctx, record); err != nil {
		logger.Error("Failed to save record", slog.String("record_id", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save record: %w", err)
	}

	if err := s.identity.AddReport(ctx, userID, id); err != nil {
		logger.Warn("Failed to link record to submitter", slog.String("record_id", id), slog.String("error", err.Error()))
	}

	s.mirror.Enqueue(&domain.MirrorTask{
		Kind:          domain.TaskAddRecord,
		SpreadsheetID: spreadsheetID,
		SheetName:     sheetName,
		Record:        &record,
	})

	s.report.Publish(ctx, domain.ActionAdded, &record, ident)
	logger.Info("Record added", slog.String("record_id", id), slog.Int64("user_id", userID))
	return &record, nil
}

func (s *RecordService) UpdateRecordField(ctx context.Context, userID int64, req dto.UpdateRecordFieldRequest) (*domain.Record, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.identity.Authorize(ctx, userID, domain.CapManageRecords); err != nil {
		return nil, err
	}
	ident, err := s.identity.Identity(ctx, userID)
	if err != nil {
		return nil, err
	}

	field := domain.RecordField(req.Field)
	if !domain.MutableRecordFields[field] {
		return nil, fmt.Errorf("%w: field %q is immutable", apperrors.ErrConflict, req.Field)
	}

	record, err := s.recordRepo.FindRecordByID(ctx, req.RecordID)
	if err != nil {
		return nil, err
	}
	if err := ownershipCheck(ident, record); err != nil {
		return nil, err
	}

	value, err := normalizeFieldValue(field, req.Value)
	if err != nil {
		return nil, err
	}

	prevDate := record.Date
	if err := s.recordRepo.UpdateRecordField(ctx, record.ID, field, value); err != nil {
		logger.Error("Failed to update record field", slog.String("record_id", record.ID), slog.String("field", string(field)), slog.String("error", err.Error()))
		return nil, err
	}

	updated, err := s.recordRepo.FindRecordByID(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	s.mirror.Enqueue(&domain.MirrorTask{
		Kind:          domain.TaskUpdateRecord,
		SpreadsheetID: updated.SpreadsheetID,
		SheetName:     updated.SheetName,
		Record:        updated,
		ChangedField:  field,
		PrevDate:      prevDate,
	})

	s.report.Publish(ctx, domain.ActionUpdated, updated, ident)
	logger.Info("Record updated", slog.String("record_id", record.ID), slog.String("field", string(field)))
	return updated, nil
}

func (s *RecordService) DeleteRecord(ctx context.Context, userID int64, recordID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.identity.Authorize(ctx, userID, domain.CapManageRecords); err != nil {
		return err
	}
	ident, err := s.identity.Identity(ctx, userID)
	if err != nil {
		return err
	}

	record, err := s.recordRepo.FindRecordByID(ctx, recordID)
	if err != nil {
		return err
	}
	if err := ownershipCheck(ident, record); err != nil {
		return err
	}

	if err := s.recordRepo.DeleteRecord(ctx, recordID); err != nil {
		logger.Error("Failed to delete record", slog.String("record_id", recordID), slog.String("error", err.Error()))
		return err
	}

	if record.UserID != nil {
		if err := s.identity.RemoveReport(ctx, *record.UserID, recordID); err != nil {
			logger.Warn("Failed to unlink record from submitter", slog.String("record_id", recordID), slog.String("error", err.Error()))
		}
	}

	s.mirror.Enqueue(&domain.MirrorTask{
		Kind:          domain.TaskDeleteRecord,
		SpreadsheetID: record.SpreadsheetID,
		SheetName:     record.SheetName,
		Record:        record,
	})

	s.report.Publish(ctx, domain.ActionDeleted, record, ident)
	logger.Info("Record deleted", slog.String("record_id", recordID), slog.Int64("user_id", userID))
	return nil
}

func (s *RecordService) GetRecord(ctx context.Context, recordID string) (*domain.Record, error) {
	return s.recordRepo.FindRecordByID(ctx, recordID)
}

func (s *RecordService) ListRecords(ctx context.Context, params dto.ListRecordsParams) ([]domain.Record, error) {
	return s.recordRepo.FindRecords(ctx, domain.RecordFilter{
		SpreadsheetID: params.SpreadsheetID,
		SheetName:     params.SheetName,
		Supplier:      params.Supplier,
		Limit:         params.Limit,
	})
}

func (s *RecordService) SearchRecords(ctx context.Context, query string, limit int) ([]domain.Record, error) {
	return s.recordRepo.SearchRecords(ctx, query, limit)
}

// ownershipCheck narrows the manage-records capability for workers: a record
// is theirs when its user id matches, or when it has no user id and the
// supplier equals their display name.
func ownershipCheck(ident *domain.Identity, record *domain.Record) error {
	if ident.Role != domain.RoleWorker {
		return nil
	}
	if record.UserID != nil && *record.UserID == ident.ExternalID {
		return nil
	}
	if record.UserID == nil && record.Supplier == ident.DisplayName {
		return nil
	}
	return fmt.Errorf("%w: record %s does not belong to user %d", apperrors.ErrUnauthorized, record.ID, ident.ExternalID)
}

// normalizeFieldValue validates and canonicalizes a field update value.
func normalizeFieldValue(field domain.RecordField, value string) (any, error) {
	switch field {
	case domain.FieldDate:
		normalized, err := utils.NormalizeDate(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		return normalized, nil
	case domain.FieldAmount:
		amount, err := utils.ParseAmount(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		if amount.IsNegative() {
			return nil, fmt.Errorf("%w: amount must not be negative", apperrors.ErrValidation)
		}
		return amount.String(), nil
	default:
		return strings.TrimSpace(value), nil
	}
}
