package domain

// MirrorTaskKind identifies what a mirror task applies to the spreadsheet.
type MirrorTaskKind string

const (
	TaskAddRecord     MirrorTaskKind = "ADD_RECORD"
	TaskUpdateRecord  MirrorTaskKind = "UPDATE_RECORD"
	TaskDeleteRecord  MirrorTaskKind = "DELETE_RECORD"
	TaskAddPayment    MirrorTaskKind = "ADD_PAYMENT"
	TaskUpdatePayment MirrorTaskKind = "UPDATE_PAYMENT"
	TaskDeletePayment MirrorTaskKind = "DELETE_PAYMENT"
)

// MirrorTask is one unit of out-of-band work applying a committed local
// mutation to the spreadsheet mirror.
type MirrorTask struct {
	// TaskID correlates log lines across retries.
	TaskID string
	Kind   MirrorTaskKind

	SpreadsheetID string
	SheetName     string

	// Record payload; set for record tasks. For updates, Record carries the
	// post-commit state and ChangedField names the mutated field.
	Record       *Record
	ChangedField RecordField
	// PrevDate is the pre-update date, set when ChangedField is the date; the
	// mirror then deletes and re-inserts instead of editing in place.
	PrevDate string

	// Payment payload; set for payment tasks.
	Payment *Payment

	Attempt    int
	MaxRetries int

	// Done, when non-nil, is invoked once with the terminal outcome.
	Done func(err error)
}
