package ports

import (
	"context"

	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
)

// SheetsGateway translates store-level operations into spreadsheet API calls.
// Every method may fail with apperrors.ErrGatewayTransient (rate limit,
// network, 5xx) or apperrors.ErrGatewayPermanent (unknown sheet, bad
// credentials). Retrying is the caller's concern, not the gateway's.
type SheetsGateway interface {
	// ListSpreadsheets enumerates spreadsheets visible to the service account.
	ListSpreadsheets(ctx context.Context) ([]domain.SpreadsheetHandle, error)

	// Describe returns the spreadsheet title and its worksheets.
	Describe(ctx context.Context, spreadsheetID string) (*domain.SpreadsheetInfo, error)

	// ReadRows returns every populated row of the worksheet as display strings.
	ReadRows(ctx context.Context, spreadsheetID, sheetName string) ([][]string, error)

	// AppendRow appends one row after the last populated row.
	AppendRow(ctx context.Context, spreadsheetID, sheetName string, row []string) error

	// AppendRows appends a batch of rows in one call.
	AppendRows(ctx context.Context, spreadsheetID, sheetName string, rows [][]string) error

	// InsertRowAt inserts a row before the zero-based rowIndex.
	InsertRowAt(ctx context.Context, spreadsheetID, sheetName string, row []string, rowIndex int) error

	// UpdateCell writes one cell at zero-based row/column coordinates.
	UpdateCell(ctx context.Context, spreadsheetID, sheetName string, rowIndex, colIndex int, value string) error

	// UpdateRange rewrites an A1 range with the given rows.
	UpdateRange(ctx context.Context, spreadsheetID, sheetName, a1Range string, rows [][]string) error

	// DeleteRow removes the zero-based rowIndex.
	DeleteRow(ctx context.Context, spreadsheetID, sheetName string, rowIndex int) error

	// Clear empties the worksheet contents.
	Clear(ctx context.Context, spreadsheetID, sheetName string) error
}

// RecordMirror is the record-shaped half of the gateway: it owns the canonical
// header row, the DD.MM.YY boundary conversion, and date-sorted placement.
type RecordMirror interface {
	// EnsureHeaders writes the canonical record header into row 1 when it is
	// missing or different. Idempotent.
	EnsureHeaders(ctx context.Context, spreadsheetID, sheetName string) error

	// InsertRecordSorted ensures headers and inserts the record before the
	// first row with a strictly later date; unparseable dates sort to the end.
	InsertRecordSorted(ctx context.Context, record *domain.Record) error

	// UpdateRecordRow locates the record's row by id and updates the mapped
	// cell. A date change deletes the row and re-inserts date-sorted.
	UpdateRecordRow(ctx context.Context, record *domain.Record, field domain.RecordField, prevDate string) error

	// DeleteRecordRow locates the record's row by id and deletes it.
	DeleteRecordRow(ctx context.Context, spreadsheetID, sheetName, recordID string) error
}

// PaymentMirror maintains the role-partitioned payments spreadsheet.
type PaymentMirror interface {
	// EnsurePaymentSheets creates the per-role worksheets with the 9-column
	// header (bold, light-grey, frozen). Idempotent.
	EnsurePaymentSheets(ctx context.Context, spreadsheetID string) error

	// AppendPaymentRow appends the payment to its role worksheet.
	AppendPaymentRow(ctx context.Context, spreadsheetID string, payment *domain.Payment) error

	// AppendPaymentRows appends a batch to one role worksheet.
	AppendPaymentRows(ctx context.Context, spreadsheetID string, role domain.Role, payments []domain.Payment) error

	// UpdatePaymentRow locates the payment by id in its role worksheet and
	// rewrites the amount and comment cells.
	UpdatePaymentRow(ctx context.Context, spreadsheetID string, payment *domain.Payment) error

	// DeletePaymentRow locates the payment by id in the role worksheet and
	// deletes the row.
	DeletePaymentRow(ctx context.Context, spreadsheetID string, role domain.Role, paymentID int64) error

	// ReadPaymentRows returns the parsed payments of one role worksheet,
	// skipping rows without an id.
	ReadPaymentRows(ctx context.Context, spreadsheetID string, role domain.Role) ([]domain.Payment, error)
}

// SpreadsheetGateway is the full gateway surface used by the mirror worker and
// the reconciler.
type SpreadsheetGateway interface {
	SheetsGateway
	RecordMirror
	PaymentMirror
}
