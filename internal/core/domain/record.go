package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordIDPrefix is the fixed prefix of every record id; the remainder is
// 8 random hex characters.
const RecordIDPrefix = "cb-"

// OrgSupplier is the sentinel supplier value marking an organization-level
// expense rather than a personal one.
const OrgSupplier = "Ֆ"

// Record represents a single expense entry. The local store is canonical; the
// spreadsheet location (SpreadsheetID, SheetName) is part of the record's
// mirror identity and immutable once assigned.
type Record struct {
	ID            string          `json:"id" db:"id"`
	Date          string          `json:"date" db:"date"` // canonical YYYY-MM-DD
	Supplier      string          `json:"supplier" db:"supplier"`
	Direction     string          `json:"direction" db:"direction"`
	Description   string          `json:"description" db:"description"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	SpreadsheetID string          `json:"spreadsheetID" db:"spreadsheet_id"`
	SheetName     string          `json:"sheetName" db:"sheet_name"`
	UserID        *int64          `json:"userID,omitempty" db:"user_id"` // nil for rows imported without a known author
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// IsOmission reports whether the record marks a day with no expense.
// Structurally an omission is an ordinary record with a zero amount.
func (r Record) IsOmission() bool {
	return r.Amount.IsZero()
}

// RecordField names a mutable record field for the update whitelist.
type RecordField string

const (
	FieldDate        RecordField = "date"
	FieldSupplier    RecordField = "supplier"
	FieldDirection   RecordField = "direction"
	FieldDescription RecordField = "description"
	FieldAmount      RecordField = "amount"
)

// MutableRecordFields is the whitelisted field set for record updates. ID and
// the mirror location are immutable; a move is modeled as delete+add.
var MutableRecordFields = map[RecordField]bool{
	FieldDate:        true,
	FieldSupplier:    true,
	FieldDirection:   true,
	FieldDescription: true,
	FieldAmount:      true,
}

// RecordFilter narrows FindRecords queries.
type RecordFilter struct {
	SpreadsheetID string
	SheetName     string
	Supplier      string
	UserID        *int64
	Limit         int
}
