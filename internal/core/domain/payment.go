package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment represents a single disbursement to a named recipient. IDs are
// monotonically increasing integers assigned by the local store; once mirrored,
// the same id occupies the first column of the payments worksheet row.
type Payment struct {
	ID              int64           `json:"id" db:"id"`
	UserDisplayName string          `json:"userDisplayName" db:"user_display_name"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	DateFrom        *string         `json:"dateFrom,omitempty" db:"date_from"` // canonical YYYY-MM-DD
	DateTo          *string         `json:"dateTo,omitempty" db:"date_to"`
	Comment         string          `json:"comment" db:"comment"`
	SpreadsheetID   *string         `json:"spreadsheetID,omitempty" db:"spreadsheet_id"`
	SheetName       *string         `json:"sheetName,omitempty" db:"sheet_name"`
	// Role is the recipient's role at the moment of creation; it selects the
	// destination worksheet in the payments spreadsheet.
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// PaymentFilter narrows FindPayments queries.
type PaymentFilter struct {
	DisplayName   string
	SpreadsheetID string
	Limit         int
}

// PaymentMonthSummary aggregates one calendar month of payments to a recipient.
type PaymentMonthSummary struct {
	Month string          `json:"month" db:"month"` // YYYY-MM
	Count int             `json:"count" db:"count"`
	Total decimal.Decimal `json:"total" db:"total"`
}
