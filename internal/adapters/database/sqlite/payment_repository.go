package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/cashbookhq/cashbook-bot/internal/apperrors"
	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
	portsrepo "github.com/cashbookhq/cashbook-bot/internal/core/ports/repositories"
)

type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Ensure PaymentRepository implements the facade.
var _ portsrepo.PaymentRepositoryFacade = (*PaymentRepository)(nil)

const paymentColumns = `id, user_display_name, amount, date_from, date_to, comment, spreadsheet_id, sheet_name, role, created_at`

func (r *PaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) (int64, error) {
	if payment.ID != 0 {
		// Reconciler pull path: the spreadsheet id is authoritative.
		query := `
            INSERT INTO payments (` + paymentColumns + `)
            VALUES (:id, :user_display_name, :amount, :date_from, :date_to, :comment, :spreadsheet_id, :sheet_name, :role, :created_at);
        `
		if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
			return 0, fmt.Errorf("%w: failed to save payment with id: %v", apperrors.ErrStoreIO, err)
		}
		return payment.ID, nil
	}

	query := `
        INSERT INTO payments (user_display_name, amount, date_from, date_to, comment, spreadsheet_id, sheet_name, role, created_at)
        VALUES (:user_display_name, :amount, :date_from, :date_to, :comment, :spreadsheet_id, :sheet_name, :role, :created_at);
    `
	res, err := r.db.NamedExecContext(ctx, query, payment)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to save payment: %v", apperrors.ErrStoreIO, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read payment id: %v", apperrors.ErrStoreIO, err)
	}
	return id, nil
}

func (r *PaymentRepository) UpdatePaymentFields(ctx context.Context, paymentID int64, amount *string, comment *string) error {
	if amount == nil && comment == nil {
		return nil
	}

	query := `UPDATE payments SET `
	args := []any{}
	if amount != nil {
		query += `amount = ?`
		args = append(args, *amount)
	}
	if comment != nil {
		if amount != nil {
			query += `, `
		}
		query += `comment = ?`
		args = append(args, *comment)
	}
	query += ` WHERE id = ?`
	args = append(args, paymentID)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: failed to update payment: %v", apperrors.ErrStoreIO, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to read rows affected: %v", apperrors.ErrStoreIO, err)
	}
	if affected == 0 {
		return fmt.Errorf("payment %d: %w", paymentID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PaymentRepository) DeletePayment(ctx context.Context, paymentID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, paymentID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete payment: %v", apperrors.ErrStoreIO, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to read rows affected: %v", apperrors.ErrStoreIO, err)
	}
	if affected == 0 {
		return fmt.Errorf("payment %d: %w", paymentID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PaymentRepository) FindPaymentByID(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.GetContext(ctx, &payment, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment %d: %w", paymentID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to find payment: %v", apperrors.ErrStoreIO, err)
	}
	return &payment, nil
}

func (r *PaymentRepository) FindPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE 1=1`
	args := []any{}

	if filter.DisplayName != "" {
		query += ` AND user_display_name = ?`
		args = append(args, filter.DisplayName)
	}
	if filter.SpreadsheetID != "" {
		query += ` AND spreadsheet_id = ?`
		args = append(args, filter.SpreadsheetID)
	}

	// Ascending for report interval-merging.
	query += ` ORDER BY created_at ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	payments := []domain.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, fmt.Errorf("%w: failed to query payments: %v", apperrors.ErrStoreIO, err)
	}
	return payments, nil
}

func (r *PaymentRepository) AllPaymentIDs(ctx context.Context) (map[int64]bool, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM payments`); err != nil {
		return nil, fmt.Errorf("%w: failed to query payment ids: %v", apperrors.ErrStoreIO, err)
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (r *PaymentRepository) MonthlySummary(ctx context.Context, displayName string) ([]domain.PaymentMonthSummary, error) {
	// created_at is stored as text; the first seven characters are YYYY-MM in
	// every format the driver writes.
	q := `
        SELECT substr(created_at, 1, 7) AS month, amount
        FROM payments
        WHERE user_display_name = ?
        ORDER BY created_at ASC;
    `
	rows, err := r.db.QueryContext(ctx, q, displayName)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query monthly summary: %v", apperrors.ErrStoreIO, err)
	}
	defer rows.Close()

	var months []string
	totals := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for rows.Next() {
		var month, amountStr string
		if err := rows.Scan(&month, &amountStr); err != nil {
			return nil, fmt.Errorf("%w: failed to scan summary row: %v", apperrors.ErrStoreIO, err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			continue
		}
		if _, seen := counts[month]; !seen {
			months = append(months, month)
		}
		counts[month]++
		totals[month] = totals[month].Add(amount)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: error iterating summary rows: %v", apperrors.ErrStoreIO, rows.Err())
	}

	summaries := make([]domain.PaymentMonthSummary, 0, len(months))
	for _, month := range months {
		summaries = append(summaries, domain.PaymentMonthSummary{
			Month: month,
			Count: counts[month],
			Total: totals[month],
		})
	}
	return summaries, nil
}
