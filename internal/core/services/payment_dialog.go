package services

import (
	"fmt"
	"strings"

	"github.com/cashbookhq/cashbook-bot/internal/apperrors"
	"github.com/cashbookhq/cashbook-bot/internal/dto"
	"github.com/cashbookhq/cashbook-bot/internal/utils"
)

// PaymentDialogState names one step of the payment entry dialog.
type PaymentDialogState string

const (
	DialogAmount  PaymentDialogState = "PAYMENT_AMOUNT"
	DialogPeriod  PaymentDialogState = "PAYMENT_PERIOD"
	DialogComment PaymentDialogState = "PAYMENT_COMMENT"
	DialogDone    PaymentDialogState = "DONE"
)

// DialogSkip is the input that skips an optional dialog step.
const DialogSkip = "-"

// PaymentDialog is the pure state machine the chat transport drives to collect
// a payment: amount, then an optional period, then an optional comment. Each
// state has exactly one successor on valid input; invalid input keeps the
// state so the transport can re-prompt.
type PaymentDialog struct {
	state PaymentDialogState
	draft dto.CreatePaymentRequest
}

func NewPaymentDialog(recipientDisplayName string) *PaymentDialog {
	return &PaymentDialog{
		state: DialogAmount,
		draft: dto.CreatePaymentRequest{RecipientDisplayName: recipientDisplayName},
	}
}

func (d *PaymentDialog) State() PaymentDialogState {
	return d.state
}

// Input feeds one user reply into the dialog. On validation failure the state
// is unchanged and the error explains what to re-prompt for.
func (d *PaymentDialog) Input(text string) error {
	text = strings.TrimSpace(text)
	switch d.state {
	case DialogAmount:
		if _, err := utils.ParsePositiveAmount(text); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		d.draft.Amount = text
		d.state = DialogPeriod
		return nil

	case DialogPeriod:
		if text == DialogSkip || text == "" {
			d.state = DialogComment
			return nil
		}
		from, to, ok := splitPeriod(text)
		if !ok {
			return fmt.Errorf("%w: expected two dates, e.g. 01.01.24 - 31.01.24", apperrors.ErrValidation)
		}
		normFrom, err := utils.NormalizeDate(from)
		if err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		normTo, err := utils.NormalizeDate(to)
		if err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		if normFrom > normTo {
			return fmt.Errorf("%w: period start is after its end", apperrors.ErrValidation)
		}
		d.draft.DateFrom = normFrom
		d.draft.DateTo = normTo
		d.state = DialogComment
		return nil

	case DialogComment:
		if text != DialogSkip {
			d.draft.Comment = text
		}
		d.state = DialogDone
		return nil
	}
	return fmt.Errorf("%w: dialog already completed", apperrors.ErrValidation)
}

// Request returns the collected payment request once the dialog is complete.
func (d *PaymentDialog) Request() (dto.CreatePaymentRequest, bool) {
	if d.state != DialogDone {
		return dto.CreatePaymentRequest{}, false
	}
	return d.draft, true
}

// splitPeriod separates "from - to" on the dash between the two dates. Dates
// themselves may contain dashes, so the split point is the dash surrounded by
// spaces, falling back to the middle dash of exactly three.
func splitPeriod(text string) (string, string, bool) {
	if from, to, ok := strings.Cut(text, " - "); ok {
		return strings.TrimSpace(from), strings.TrimSpace(to), true
	}
	if fields := strings.Fields(text); len(fields) == 2 {
		return fields[0], fields[1], true
	}
	return "", "", false
}
