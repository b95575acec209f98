package dto

// CreateRecordRequest carries the fields for a new expense record. Date is
// free-form input; the coordinator normalizes it and defaults to today when
// empty. Amount is the raw user string so validation stays in one place.
type CreateRecordRequest struct {
	Date        string `json:"date"`
	Supplier    string `json:"supplier"`
	Direction   string `json:"direction"`
	Description string `json:"description"`
	Amount      string `json:"amount"`

	SpreadsheetID string `json:"spreadsheetID"`
	SheetName     string `json:"sheetName"`
}

// UpdateRecordFieldRequest mutates exactly one whitelisted field.
type UpdateRecordFieldRequest struct {
	RecordID string `json:"recordID"`
	Field    string `json:"field"`
	Value    string `json:"value"`
}

// ListRecordsParams narrows record listings.
type ListRecordsParams struct {
	SpreadsheetID string `form:"spreadsheetID"`
	SheetName     string `form:"sheetName"`
	Supplier      string `form:"supplier"`
	Limit         int    `form:"limit,default=50"`
}
