package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/cashbookhq/cashbook-bot/internal/apperrors"
	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
	portsrepo "github.com/cashbookhq/cashbook-bot/internal/core/ports/repositories"
)

type RecordRepository struct {
	db *sqlx.DB
}

func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Ensure RecordRepository implements the facade.
var _ portsrepo.RecordRepositoryFacade = (*RecordRepository)(nil)

const recordColumns = `id, date, supplier, direction, description, amount, spreadsheet_id, sheet_name, user_id, created_at, updated_at`

func (r *RecordRepository) SaveRecord(ctx context.Context, record domain.Record) error {
	query := `
        INSERT INTO records (` + recordColumns + `)
        VALUES (:id, :date, :supplier, :direction, :description, :amount, :spreadsheet_id, :sheet_name, :user_id, :created_at, :updated_at)
        ON CONFLICT (id) DO UPDATE SET
            date = excluded.date,
            supplier = excluded.supplier,
            direction = excluded.direction,
            description = excluded.description,
            amount = excluded.amount,
            user_id = excluded.user_id,
            updated_at = excluded.updated_at;
    `
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("%w: failed to save record: %v", apperrors.ErrStoreIO, err)
	}
	return nil
}

func (r *RecordRepository) UpdateRecordField(ctx context.Context, recordID string, field domain.RecordField, value any) error {
	if !domain.MutableRecordFields[field] {
		return fmt.Errorf("%w: field %q is not updatable", apperrors.ErrConflict, field)
	}

	// Field names come from the whitelist above, never from user input.
	query := fmt.Sprintf(`UPDATE records SET %s = ?, updated_at = ? WHERE id = ?`, field)
	res, err := r.db.ExecContext(ctx, query, value, time.Now().UTC(), recordID)
	if err != nil {
		return fmt.Errorf("%w: failed to update record field: %v", apperrors.ErrStoreIO, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to read rows affected: %v", apperrors.ErrStoreIO, err)
	}
	if affected == 0 {
		return fmt.Errorf("record %s: %w", recordID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *RecordRepository) DeleteRecord(ctx context.Context, recordID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, recordID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete record: %v", apperrors.ErrStoreIO, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to read rows affected: %v", apperrors.ErrStoreIO, err)
	}
	if affected == 0 {
		return fmt.Errorf("record %s: %w", recordID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *RecordRepository) FindRecordByID(ctx context.Context, recordID string) (*domain.Record, error) {
	var record domain.Record
	err := r.db.GetContext(ctx, &record, `SELECT `+recordColumns+` FROM records WHERE id = ?`, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("record %s: %w", recordID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to find record: %v", apperrors.ErrStoreIO, err)
	}
	return &record, nil
}

func (r *RecordRepository) FindRecords(ctx context.Context, filter domain.RecordFilter) ([]domain.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE 1=1`
	args := []any{}

	if filter.SpreadsheetID != "" {
		query += ` AND spreadsheet_id = ?`
		args = append(args, filter.SpreadsheetID)
	}
	if filter.SheetName != "" {
		query += ` AND sheet_name = ?`
		args = append(args, filter.SheetName)
	}
	if filter.Supplier != "" {
		query += ` AND supplier = ?`
		args = append(args, filter.Supplier)
	}
	if filter.UserID != nil {
		query += ` AND user_id = ?`
		args = append(args, *filter.UserID)
	}

	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	records := []domain.Record{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("%w: failed to query records: %v", apperrors.ErrStoreIO, err)
	}
	return records, nil
}

func (r *RecordRepository) SearchRecords(ctx context.Context, query string, limit int) ([]domain.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	// Canonical YYYY-MM-DD dates sort year, month, day in one lexicographic
	// pass; empty dates land last under DESC.
	q := `
        SELECT ` + recordColumns + ` FROM records
        WHERE supplier LIKE ? OR direction LIKE ? OR description LIKE ?
        ORDER BY date DESC
        LIMIT ?;
    `
	pattern := "%" + query + "%"

	records := []domain.Record{}
	if err := r.db.SelectContext(ctx, &records, q, pattern, pattern, pattern, limit); err != nil {
		return nil, fmt.Errorf("%w: failed to search records: %v", apperrors.ErrStoreIO, err)
	}
	return records, nil
}

func (r *RecordRepository) SupplierTotals(ctx context.Context, spreadsheetID, sheetName string) (map[string]string, error) {
	q := `SELECT supplier, amount FROM records WHERE spreadsheet_id = ? AND sheet_name = ?`
	rows, err := r.db.QueryContext(ctx, q, spreadsheetID, sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query supplier totals: %v", apperrors.ErrStoreIO, err)
	}
	defer rows.Close()

	// Summed in decimal space; REAL casts in SQL would drift on large books.
	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var supplier, amountStr string
		if err := rows.Scan(&supplier, &amountStr); err != nil {
			return nil, fmt.Errorf("%w: failed to scan supplier total: %v", apperrors.ErrStoreIO, err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			continue
		}
		totals[supplier] = totals[supplier].Add(amount)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: error iterating supplier totals: %v", apperrors.ErrStoreIO, rows.Err())
	}

	out := make(map[string]string, len(totals))
	for supplier, total := range totals {
		out[supplier] = total.String()
	}
	return out, nil
}

func (r *RecordRepository) CountRecords(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM records`); err != nil {
		return 0, fmt.Errorf("%w: failed to count records: %v", apperrors.ErrStoreIO, err)
	}
	return count, nil
}
