package dto

// CreatePaymentRequest registers a disbursement to a recipient identified by
// display name. DateFrom/DateTo form an optional period: either both set or
// both empty.
type CreatePaymentRequest struct {
	RecipientDisplayName string `json:"recipientDisplayName"`
	Amount               string `json:"amount"`
	DateFrom             string `json:"dateFrom,omitempty"`
	DateTo               string `json:"dateTo,omitempty"`
	Comment              string `json:"comment,omitempty"`

	// Optional link to the matching expense worksheet.
	SpreadsheetID string `json:"spreadsheetID,omitempty"`
	SheetName     string `json:"sheetName,omitempty"`
}

// EditPaymentRequest updates the editable payment fields. Pointers distinguish
// omitted fields from zero values.
type EditPaymentRequest struct {
	PaymentID int64   `json:"paymentID"`
	Amount    *string `json:"amount,omitempty"`
	Comment   *string `json:"comment,omitempty"`
}

// ListPaymentsParams narrows payment listings.
type ListPaymentsParams struct {
	DisplayName   string `form:"displayName"`
	SpreadsheetID string `form:"spreadsheetID"`
	Limit         int    `form:"limit,default=100"`
}
