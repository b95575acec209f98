package dto

import "github.com/cashbookhq/cashbook-bot/internal/core/domain"

// InitializeRequest selects the spreadsheet for a record ingest run. An empty
// id means every accessible spreadsheet except the payments one.
type InitializeRequest struct {
	SpreadsheetID string `json:"spreadsheetID"`
}

// ReconcileResponse reports the outcome of a reconciliation pass.
type ReconcileResponse struct {
	Pulled  int `json:"pulled"`
	Pushed  int `json:"pushed"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

func ToReconcileResponse(stats domain.ReconcileStats) ReconcileResponse {
	return ReconcileResponse{
		Pulled:  stats.Pulled,
		Pushed:  stats.Pushed,
		Skipped: stats.Skipped,
		Errors:  stats.Errors,
	}
}

// StatsResponse is the operator dashboard snapshot. SupplierTotals is present
// only when the request names a worksheet.
type StatsResponse struct {
	Records          int               `json:"records"`
	MirrorQueueDepth int               `json:"mirrorQueueDepth"`
	SupplierTotals   map[string]string `json:"supplierTotals,omitempty"`
}
