package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
	"github.com/cashbookhq/cashbook-bot/internal/core/ports"
	"github.com/cashbookhq/cashbook-bot/internal/core/ports/repositories"
	portssvc "github.com/cashbookhq/cashbook-bot/internal/core/ports/services"
	"github.com/cashbookhq/cashbook-bot/internal/middleware"
	"github.com/cashbookhq/cashbook-bot/internal/utils"
)

// recordSheetColumns is the fixed record worksheet width used when rewriting
// ingested worksheets.
const recordSheetColumns = 6

// ReconcileService re-aligns the local store and the spreadsheet mirror.
// Both passes are additive: rows present on both sides with divergent fields
// are counted as skipped and left alone.
type ReconcileService struct {
	recordRepo            repositories.RecordRepositoryFacade
	paymentRepo           repositories.PaymentRepositoryFacade
	gateway               ports.SpreadsheetGateway
	paymentsSpreadsheetID string
}

var _ portssvc.ReconcileSvcFacade = (*ReconcileService)(nil)

func NewReconcileService(
	recordRepo repositories.RecordRepositoryFacade,
	paymentRepo repositories.PaymentRepositoryFacade,
	gateway ports.SpreadsheetGateway,
	paymentsSpreadsheetID string,
) *ReconcileService {
	return &ReconcileService{
		recordRepo:            recordRepo,
		paymentRepo:           paymentRepo,
		gateway:               gateway,
		paymentsSpreadsheetID: paymentsSpreadsheetID,
	}
}

func (s *ReconcileService) ReconcilePayments(ctx context.Context) (domain.ReconcileStats, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	stats := domain.ReconcileStats{}

	if s.paymentsSpreadsheetID == "" {
		logger.Info("Payment reconciliation skipped: no payments spreadsheet configured")
		return stats, nil
	}

	if err := s.gateway.EnsurePaymentSheets(ctx, s.paymentsSpreadsheetID); err != nil {
		return stats, fmt.Errorf("failed to ensure payment sheets: %w", err)
	}

	localIDs, err := s.paymentRepo.AllPaymentIDs(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to load local payment ids: %w", err)
	}

	// Phase A: pull sheet rows missing locally. A role worksheet that cannot
	// be read is excluded from the push phase so its payments are not
	// re-appended blindly.
	sheetIDs := map[int64]bool{}
	unreadableRoles := map[domain.Role]bool{}
	for _, role := range domain.PaymentRoles {
		payments, err := s.gateway.ReadPaymentRows(ctx, s.paymentsSpreadsheetID, role)
		if err != nil {
			logger.Warn("Failed to read role worksheet", slog.String("role", string(role)), slog.String("error", err.Error()))
			unreadableRoles[role] = true
			stats.Errors++
			continue
		}
		for i := range payments {
			p := payments[i]
			sheetIDs[p.ID] = true
			if localIDs[p.ID] {
				stats.Skipped++
				continue
			}
			if _, err := s.paymentRepo.SavePayment(ctx, p); err != nil {
				logger.Warn("Failed to pull payment", slog.Int64("payment_id", p.ID), slog.String("error", err.Error()))
				stats.Errors++
				continue
			}
			stats.Pulled++
		}
	}

	// Phase B: push local payments absent from every role worksheet, one
	// batch append per role.
	local, err := s.paymentRepo.FindPayments(ctx, domain.PaymentFilter{})
	if err != nil {
		return stats, fmt.Errorf("failed to list local payments: %w", err)
	}
	missing := map[domain.Role][]domain.Payment{}
	for _, p := range local {
		if sheetIDs[p.ID] {
			continue
		}
		role := p.Role
		if !role.CanReceivePayments() {
			role = domain.RoleWorker
		}
		if unreadableRoles[role] {
			continue
		}
		missing[role] = append(missing[role], p)
	}
	for role, batch := range missing {
		if err := s.gateway.AppendPaymentRows(ctx, s.paymentsSpreadsheetID, role, batch); err != nil {
			logger.Warn("Failed to push payment batch", slog.String("role", string(role)), slog.Int("count", len(batch)), slog.String("error", err.Error()))
			stats.Errors++
			continue
		}
		stats.Pushed += len(batch)
	}

	logger.Info("Payment reconciliation completed",
		slog.Int("pulled", stats.Pulled),
		slog.Int("pushed", stats.Pushed),
		slog.Int("skipped", stats.Skipped),
		slog.Int("errors", stats.Errors),
	)
	return stats, nil
}

func (s *ReconcileService) InitializeRecords(ctx context.Context, spreadsheetID string) (domain.ReconcileStats, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	stats := domain.ReconcileStats{}

	var targets []string
	if spreadsheetID != "" {
		targets = []string{spreadsheetID}
	} else {
		handles, err := s.gateway.ListSpreadsheets(ctx)
		if err != nil {
			return stats, fmt.Errorf("failed to list spreadsheets: %w", err)
		}
		for _, h := range handles {
			if h.ID == s.paymentsSpreadsheetID {
				continue // payments have their own pass
			}
			targets = append(targets, h.ID)
		}
	}

	for _, target := range targets {
		info, err := s.gateway.Describe(ctx, target)
		if err != nil {
			logger.Warn("Failed to describe spreadsheet", slog.String("spreadsheet_id", target), slog.String("error", err.Error()))
			stats.Errors++
			continue
		}
		for _, ws := range info.Worksheets {
			if err := s.ingestWorksheet(ctx, target, ws.Title, &stats); err != nil {
				logger.Warn("Failed to ingest worksheet",
					slog.String("spreadsheet_id", target),
					slog.String("sheet_name", ws.Title),
					slog.String("error", err.Error()),
				)
				stats.Errors++
			}
		}
	}

	logger.Info("Record initialization completed",
		slog.Int("pulled", stats.Pulled),
		slog.Int("pushed", stats.Pushed),
		slog.Int("skipped", stats.Skipped),
		slog.Int("errors", stats.Errors),
	)
	return stats, nil
}

// ingestWorksheet normalizes one worksheet: ids are backfilled, dates and
// amounts canonicalized, rows without a date inherit the preceding row's,
// every row is upserted into the store, then the worksheet is rewritten in one
// batch.
func (s *ReconcileService) ingestWorksheet(ctx context.Context, spreadsheetID, sheetName string, stats *domain.ReconcileStats) error {
	rows, err := s.gateway.ReadRows(ctx, spreadsheetID, sheetName)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	dataStart := 0
	if len(rows[0]) > 0 && rows[0][0] == "ID" {
		dataStart = 1
	}

	rewritten := make([][]string, 0, len(rows))
	rewritten = append(rewritten, rows[:dataStart]...)

	now := time.Now().UTC()
	prevDate := ""
	for _, row := range rows[dataStart:] {
		cell := func(i int) string {
			if i < len(row) {
				return row[i]
			}
			return ""
		}
		if isEmptyRow(row) {
			stats.Skipped++
			rewritten = append(rewritten, make([]string, recordSheetColumns))
			continue
		}

		id := cell(0)
		if !utils.IsRecordID(id) {
			if id, err = utils.NewRecordID(); err != nil {
				return fmt.Errorf("failed to generate record id: %w", err)
			}
		}

		date, err := utils.NormalizeDate(cell(1))
		if err != nil {
			if prevDate == "" {
				stats.Errors++
				rewritten = append(rewritten, padRow(row))
				continue
			}
			date = prevDate
		}
		prevDate = date

		amount, err := utils.ParseAmount(cell(5))
		if err != nil {
			stats.Errors++
			rewritten = append(rewritten, padRow(row))
			continue
		}

		record := domain.Record{
			ID:            id,
			Date:          date,
			Supplier:      cell(2),
			Direction:     cell(3),
			Description:   cell(4),
			Amount:        amount,
			SpreadsheetID: spreadsheetID,
			SheetName:     sheetName,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.recordRepo.SaveRecord(ctx, record); err != nil {
			stats.Errors++
			rewritten = append(rewritten, padRow(row))
			continue
		}
		stats.Pulled++
		rewritten = append(rewritten, []string{
			record.ID,
			utils.DisplayDate(record.Date),
			record.Supplier,
			record.Direction,
			record.Description,
			record.Amount.String(),
		})
	}

	// Every source row maps to exactly one rewritten row, so a single range
	// update overwrites the worksheet's full prior extent. No clear first: a
	// failure mid-rewrite must not leave the worksheet empty.
	a1 := fmt.Sprintf("A1:F%d", len(rewritten))
	if err := s.gateway.UpdateRange(ctx, spreadsheetID, sheetName, a1, rewritten); err != nil {
		return err
	}
	stats.Pushed += len(rewritten) - dataStart
	return nil
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

// padRow widens a kept-as-is row to the worksheet width for the batch rewrite.
func padRow(row []string) []string {
	if len(row) >= recordSheetColumns {
		return row[:recordSheetColumns]
	}
	padded := make([]string, recordSheetColumns)
	copy(padded, row)
	return padded
}
