package domain

// SpreadsheetHandle identifies one spreadsheet visible to the service account.
type SpreadsheetHandle struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// WorksheetInfo describes one worksheet within a spreadsheet.
type WorksheetInfo struct {
	Title    string `json:"title"`
	SheetID  int64  `json:"sheetID"`
	RowCount int64  `json:"rowCount"`
	ColCount int64  `json:"colCount"`
}

// SpreadsheetInfo is the describe() result for one spreadsheet.
type SpreadsheetInfo struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Worksheets []WorksheetInfo `json:"worksheets"`
}

// ReconcileStats summarizes one reconciliation pass. Per-row failures are
// counted, not fatal.
type ReconcileStats struct {
	Pulled  int `json:"pulled"`
	Pushed  int `json:"pushed"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}
