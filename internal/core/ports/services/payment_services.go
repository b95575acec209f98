package services

import (
	"context"

	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
	"github.com/cashbookhq/cashbook-bot/internal/dto"
)

// PaymentSvcFacade is the write path for payments. Only admins may mutate.
type PaymentSvcFacade interface {
	// AddPayment registers a disbursement, resolves the recipient's role and
	// schedules the role-worksheet mirror append.
	AddPayment(ctx context.Context, adminID int64, req dto.CreatePaymentRequest) (*domain.Payment, error)

	// EditPayment updates amount and/or comment and mirrors the change.
	EditPayment(ctx context.Context, adminID int64, req dto.EditPaymentRequest) (*domain.Payment, error)

	// DeletePayment removes the payment locally and schedules mirror-row
	// deletion in the stored role's worksheet.
	DeletePayment(ctx context.Context, adminID int64, paymentID int64) error

	// ListPayments applies the §4.1 visibility rules for the caller.
	ListPayments(ctx context.Context, callerID int64, params dto.ListPaymentsParams) ([]domain.Payment, error)

	// Summary aggregates monthly counts and totals for one recipient.
	Summary(ctx context.Context, callerID int64, recipientDisplayName string) ([]domain.PaymentMonthSummary, error)
}
