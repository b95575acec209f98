package repositories

import (
	"context"

	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
)

// PaymentReader defines read operations for payments.
type PaymentReader interface {
	// FindPaymentByID retrieves a payment; apperrors.ErrNotFound when absent.
	FindPaymentByID(ctx context.Context, paymentID int64) (*domain.Payment, error)

	// FindPayments retrieves payments matching the filter, created_at
	// ascending for report interval-merging.
	FindPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error)

	// AllPaymentIDs returns every stored payment id; used by the reconciler.
	AllPaymentIDs(ctx context.Context) (map[int64]bool, error)

	// MonthlySummary aggregates per-month counts and totals for a recipient.
	MonthlySummary(ctx context.Context, displayName string) ([]domain.PaymentMonthSummary, error)
}

// PaymentWriter defines write operations for payments.
type PaymentWriter interface {
	// SavePayment inserts a payment and returns the assigned id. When
	// payment.ID is non-zero (reconciler pull) the given id is kept.
	SavePayment(ctx context.Context, payment domain.Payment) (int64, error)

	// UpdatePaymentFields updates amount and/or comment; nil leaves a field
	// unchanged.
	UpdatePaymentFields(ctx context.Context, paymentID int64, amount *string, comment *string) error

	// DeletePayment removes a payment; apperrors.ErrNotFound when absent.
	DeletePayment(ctx context.Context, paymentID int64) error
}

// PaymentRepositoryFacade combines all payment repository interfaces.
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
}
