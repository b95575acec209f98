package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cashbookhq/cashbook-bot/internal/apperrors"
	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
	"github.com/cashbookhq/cashbook-bot/internal/core/ports"
	"github.com/cashbookhq/cashbook-bot/internal/core/ports/repositories"
	portssvc "github.com/cashbookhq/cashbook-bot/internal/core/ports/services"
	"github.com/cashbookhq/cashbook-bot/internal/dto"
	"github.com/cashbookhq/cashbook-bot/internal/middleware"
	"github.com/cashbookhq/cashbook-bot/internal/utils"
)

// PaymentService is the payment write path. Mutations require the manage
// payments capability; mirroring targets the role worksheet selected by the
// recipient's role at creation time.
type PaymentService struct {
	paymentRepo           repositories.PaymentRepositoryFacade
	identity              portssvc.IdentitySvcFacade
	mirror                portssvc.MirrorSvcFacade
	notifier              ports.Notifier
	paymentsSpreadsheetID string
}

var _ portssvc.PaymentSvcFacade = (*PaymentService)(nil)

func NewPaymentService(
	paymentRepo repositories.PaymentRepositoryFacade,
	identity portssvc.IdentitySvcFacade,
	mirror portssvc.MirrorSvcFacade,
	notifier ports.Notifier,
	paymentsSpreadsheetID string,
) *PaymentService {
	return &PaymentService{
		paymentRepo:           paymentRepo,
		identity:              identity,
		mirror:                mirror,
		notifier:              notifier,
		paymentsSpreadsheetID: paymentsSpreadsheetID,
	}
}

func (s *PaymentService) AddPayment(ctx context.Context, adminID int64, req dto.CreatePaymentRequest) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.identity.Authorize(ctx, adminID, domain.CapManagePayments); err != nil {
		return nil, err
	}

	recipient := strings.TrimSpace(req.RecipientDisplayName)
	if recipient == "" {
		return nil, fmt.Errorf("%w: recipient is required", apperrors.ErrValidation)
	}

	amount, err := utils.ParsePositiveAmount(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	dateFrom, dateTo, err := normalizePeriod(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}

	// Rows pulled from the sheet may carry names the registry never saw;
	// the same default applies here for symmetry.
	role, ok := s.identity.ResolveRoleByDisplayName(ctx, recipient)
	if !ok || !role.CanReceivePayments() {
		role = domain.RoleWorker
	}

	payment := domain.Payment{
		UserDisplayName: recipient,
		Amount:          amount,
		DateFrom:        dateFrom,
		DateTo:          dateTo,
		Comment:         strings.TrimSpace(req.Comment),
		Role:            role,
		CreatedAt:       time.Now().UTC(),
	}
	if req.SpreadsheetID != "" {
		payment.SpreadsheetID = &req.SpreadsheetID
	}
	if req.SheetName != "" {
		payment.SheetName = &req.SheetName
	}

	id, err := s.paymentRepo.SavePayment(ctx, payment)
	if err != nil {
		logger.Error("Failed to save payment", slog.String("recipient", recipient), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}
	payment.ID = id

	if s.paymentsSpreadsheetID != "" {
		s.mirror.Enqueue(&domain.MirrorTask{
			Kind:          domain.TaskAddPayment,
			SpreadsheetID: s.paymentsSpreadsheetID,
			Payment:       &payment,
		})
	}

	s.notifyPaymentParties(ctx, adminID, &payment)
	logger.Info("Payment added", slog.Int64("payment_id", id), slog.String("recipient", recipient))
	return &payment, nil
}

func (s *PaymentService) EditPayment(ctx context.Context, adminID int64, req dto.EditPaymentRequest) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.identity.Authorize(ctx, adminID, domain.CapManagePayments); err != nil {
		return nil, err
	}
	if req.Amount == nil && req.Comment == nil {
		return nil, fmt.Errorf("%w: nothing to update", apperrors.ErrValidation)
	}

	var amountStr *string
	if req.Amount != nil {
		amount, err := utils.ParsePositiveAmount(*req.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		normalized := amount.String()
		amountStr = &normalized
	}

	if err := s.paymentRepo.UpdatePaymentFields(ctx, req.PaymentID, amountStr, req.Comment); err != nil {
		return nil, err
	}

	updated, err := s.paymentRepo.FindPaymentByID(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}

	if s.paymentsSpreadsheetID != "" {
		s.mirror.Enqueue(&domain.MirrorTask{
			Kind:          domain.TaskUpdatePayment,
			SpreadsheetID: s.paymentsSpreadsheetID,
			Payment:       updated,
		})
	}

	logger.Info("Payment edited", slog.Int64("payment_id", req.PaymentID))
	return updated, nil
}

func (s *PaymentService) DeletePayment(ctx context.Context, adminID int64, paymentID int64) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.identity.Authorize(ctx, adminID, domain.CapManagePayments); err != nil {
		return err
	}

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return err
	}

	if err := s.paymentRepo.DeletePayment(ctx, paymentID); err != nil {
		return err
	}

	if s.paymentsSpreadsheetID != "" {
		s.mirror.Enqueue(&domain.MirrorTask{
			Kind:          domain.TaskDeletePayment,
			SpreadsheetID: s.paymentsSpreadsheetID,
			Payment:       payment,
		})
	}

	logger.Info("Payment deleted", slog.Int64("payment_id", paymentID))
	return nil
}

func (s *PaymentService) ListPayments(ctx context.Context, callerID int64, params dto.ListPaymentsParams) ([]domain.Payment, error) {
	filter := domain.PaymentFilter{
		DisplayName:   params.DisplayName,
		SpreadsheetID: params.SpreadsheetID,
		Limit:         params.Limit,
	}

	if err := s.identity.Authorize(ctx, callerID, domain.CapViewAllPayments); err == nil {
		return s.paymentRepo.FindPayments(ctx, filter)
	}

	if err := s.identity.Authorize(ctx, callerID, domain.CapViewOwnPayments); err != nil {
		return nil, err
	}
	ident, err := s.identity.Identity(ctx, callerID)
	if err != nil {
		return nil, err
	}
	filter.DisplayName = ident.DisplayName
	return s.paymentRepo.FindPayments(ctx, filter)
}

func (s *PaymentService) Summary(ctx context.Context, callerID int64, recipientDisplayName string) ([]domain.PaymentMonthSummary, error) {
	ident, err := s.identity.Identity(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if recipientDisplayName == "" {
		recipientDisplayName = ident.DisplayName
	}

	capability := domain.CapViewOwnPayments
	if recipientDisplayName != ident.DisplayName {
		capability = domain.CapViewAllPayments
	}
	if err := s.identity.Authorize(ctx, callerID, capability); err != nil {
		return nil, err
	}
	return s.paymentRepo.MonthlySummary(ctx, recipientDisplayName)
}

// notifyPaymentParties delivers the payment details to the admin and, when
// registered, the recipient. Best-effort: failures are logged, never returned.
func (s *PaymentService) notifyPaymentParties(ctx context.Context, adminID int64, payment *domain.Payment) {
	logger := middleware.GetLoggerFromCtx(ctx)
	text := paymentText(payment)

	if err := s.notifier.Send(ctx, adminID, text); err != nil {
		logger.Warn("Failed to notify admin about payment", slog.Int64("payment_id", payment.ID), slog.String("error", err.Error()))
	}
	recipient, ok := s.identity.IdentityByDisplayName(ctx, payment.UserDisplayName)
	if !ok || recipient.ExternalID == adminID {
		return
	}
	if err := s.notifier.Send(ctx, recipient.ExternalID, text); err != nil {
		logger.Warn("Failed to notify recipient about payment", slog.Int64("payment_id", payment.ID), slog.String("error", err.Error()))
	}
}

func paymentText(p *domain.Payment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Payment #%d: %s to %s", p.ID, p.Amount.String(), p.UserDisplayName)
	if p.DateFrom != nil && p.DateTo != nil {
		fmt.Fprintf(&b, " for %s - %s", utils.DisplayDate(*p.DateFrom), utils.DisplayDate(*p.DateTo))
	}
	if p.Comment != "" {
		fmt.Fprintf(&b, " (%s)", p.Comment)
	}
	return b.String()
}

// normalizePeriod validates the optional payment period: both ends present or
// both absent, canonicalized, from not after to.
func normalizePeriod(from, to string) (*string, *string, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" && to == "" {
		return nil, nil, nil
	}
	if from == "" || to == "" {
		return nil, nil, fmt.Errorf("%w: period needs both start and end dates", apperrors.ErrValidation)
	}
	normFrom, err := utils.NormalizeDate(from)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	normTo, err := utils.NormalizeDate(to)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if normFrom > normTo {
		return nil, nil, fmt.Errorf("%w: period start is after its end", apperrors.ErrValidation)
	}
	return &normFrom, &normTo, nil
}
