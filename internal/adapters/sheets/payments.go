package sheets

import (
	"context"
	"fmt"
	"strconv"
	"time"

	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/cashbookhq/cashbook-bot/internal/apperrors"
	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
	"github.com/cashbookhq/cashbook-bot/internal/utils"
)

// Payments spreadsheet layout: one worksheet per role, nine fixed columns,
// payment id in the first column.
const (
	colPaymentID = iota
	colPaymentRecipient
	colPaymentAmount
	colPaymentDateFrom
	colPaymentDateTo
	colPaymentComment
	colPaymentCreatedAt
	colPaymentLinkedSpreadsheet
	colPaymentLinkedSheet
	paymentColumnCount
)

// PaymentHeaders is the header row of every role worksheet.
var PaymentHeaders = []string{
	"ID", "Recipient", "Amount", "From", "To", "Comment", "Created", "Spreadsheet", "Sheet",
}

// roleSheetTitles fixes the worksheet title per payable role.
var roleSheetTitles = map[domain.Role]string{
	domain.RoleAdmin:     "Admins",
	domain.RoleWorker:    "Workers",
	domain.RoleSecondary: "Secondary",
	domain.RoleClient:    "Clients",
}

// RoleSheetTitle returns the payments worksheet title for a role, defaulting
// to the worker sheet for non-payable roles.
func RoleSheetTitle(role domain.Role) string {
	if title, ok := roleSheetTitles[role]; ok {
		return title
	}
	return roleSheetTitles[domain.RoleWorker]
}

const paymentCreatedAtLayout = "2006-01-02 15:04:05"

// PaymentToRow encodes a payment for its role worksheet.
func PaymentToRow(p *domain.Payment) []string {
	row := make([]string, paymentColumnCount)
	row[colPaymentID] = strconv.FormatInt(p.ID, 10)
	row[colPaymentRecipient] = p.UserDisplayName
	row[colPaymentAmount] = p.Amount.String()
	if p.DateFrom != nil {
		row[colPaymentDateFrom] = utils.DisplayDate(*p.DateFrom)
	}
	if p.DateTo != nil {
		row[colPaymentDateTo] = utils.DisplayDate(*p.DateTo)
	}
	row[colPaymentComment] = p.Comment
	row[colPaymentCreatedAt] = p.CreatedAt.UTC().Format(paymentCreatedAtLayout)
	if p.SpreadsheetID != nil {
		row[colPaymentLinkedSpreadsheet] = *p.SpreadsheetID
	}
	if p.SheetName != nil {
		row[colPaymentLinkedSheet] = *p.SheetName
	}
	return row
}

// PaymentFromRow parses a role worksheet row. Returns false for rows without
// a usable id or amount; the reconciler skips those.
func PaymentFromRow(row []string, role domain.Role) (domain.Payment, bool) {
	if len(row) <= colPaymentID || row[colPaymentID] == "" {
		return domain.Payment{}, false
	}
	id, err := strconv.ParseInt(row[colPaymentID], 10, 64)
	if err != nil {
		return domain.Payment{}, false
	}

	p := domain.Payment{ID: id, Role: role}
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	p.UserDisplayName = cell(colPaymentRecipient)
	amount, err := utils.ParseAmount(cell(colPaymentAmount))
	if err != nil {
		// An unreadable amount would pull a zero-amount payment into the
		// store.
		return domain.Payment{}, false
	}
	p.Amount = amount
	if from, err := utils.ParseDisplayDate(cell(colPaymentDateFrom)); err == nil {
		p.DateFrom = &from
	}
	if to, err := utils.ParseDisplayDate(cell(colPaymentDateTo)); err == nil {
		p.DateTo = &to
	}
	p.Comment = cell(colPaymentComment)
	if created, err := time.Parse(paymentCreatedAtLayout, cell(colPaymentCreatedAt)); err == nil {
		p.CreatedAt = created
	} else {
		p.CreatedAt = time.Now().UTC()
	}
	if s := cell(colPaymentLinkedSpreadsheet); s != "" {
		p.SpreadsheetID = &s
	}
	if s := cell(colPaymentLinkedSheet); s != "" {
		p.SheetName = &s
	}
	return p, true
}

func (g *Gateway) EnsurePaymentSheets(ctx context.Context, spreadsheetID string) error {
	info, err := g.Describe(ctx, spreadsheetID)
	if err != nil {
		return err
	}
	existing := make(map[string]int64, len(info.Worksheets))
	for _, ws := range info.Worksheets {
		existing[ws.Title] = ws.SheetID
	}

	var requests []*sheetsapi.Request
	var missing []domain.Role
	for _, role := range domain.PaymentRoles {
		title := RoleSheetTitle(role)
		if _, ok := existing[title]; ok {
			continue
		}
		missing = append(missing, role)
		requests = append(requests, &sheetsapi.Request{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{
					Title: title,
					GridProperties: &sheetsapi.GridProperties{
						RowCount:       1000,
						ColumnCount:    paymentColumnCount,
						FrozenRowCount: 1,
					},
				},
			},
		})
	}

	if len(requests) > 0 {
		if _, err := g.sheets.Spreadsheets.BatchUpdate(spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
			Requests: requests,
		}).Context(ctx).Do(); err != nil {
			return classify(err)
		}
	}

	for _, role := range missing {
		title := RoleSheetTitle(role)
		if err := g.UpdateRange(ctx, spreadsheetID, title, "A1:I1", [][]string{PaymentHeaders}); err != nil {
			return err
		}
		if err := g.formatPaymentHeader(ctx, spreadsheetID, title); err != nil {
			return err
		}
	}
	return nil
}

// formatPaymentHeader applies the bold, light-grey, frozen first row.
func (g *Gateway) formatPaymentHeader(ctx context.Context, spreadsheetID, sheetName string) error {
	sheetID, err := g.sheetID(ctx, spreadsheetID, sheetName)
	if err != nil {
		return err
	}
	grey := &sheetsapi.Color{Red: 0.9, Green: 0.9, Blue: 0.9}
	_, err = g.sheets.Spreadsheets.BatchUpdate(spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{
			{
				RepeatCell: &sheetsapi.RepeatCellRequest{
					Range: &sheetsapi.GridRange{
						SheetId:       sheetID,
						StartRowIndex: 0,
						EndRowIndex:   1,
					},
					Cell: &sheetsapi.CellData{
						UserEnteredFormat: &sheetsapi.CellFormat{
							BackgroundColor: grey,
							TextFormat:      &sheetsapi.TextFormat{Bold: true},
						},
					},
					Fields: "userEnteredFormat(backgroundColor,textFormat)",
				},
			},
			{
				UpdateSheetProperties: &sheetsapi.UpdateSheetPropertiesRequest{
					Properties: &sheetsapi.SheetProperties{
						SheetId:        sheetID,
						GridProperties: &sheetsapi.GridProperties{FrozenRowCount: 1},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
		},
	}).Context(ctx).Do()
	return classify(err)
}

func (g *Gateway) AppendPaymentRow(ctx context.Context, spreadsheetID string, payment *domain.Payment) error {
	return g.AppendRow(ctx, spreadsheetID, RoleSheetTitle(payment.Role), PaymentToRow(payment))
}

func (g *Gateway) AppendPaymentRows(ctx context.Context, spreadsheetID string, role domain.Role, payments []domain.Payment) error {
	rows := make([][]string, len(payments))
	for i := range payments {
		rows[i] = PaymentToRow(&payments[i])
	}
	return g.AppendRows(ctx, spreadsheetID, RoleSheetTitle(role), rows)
}

func (g *Gateway) UpdatePaymentRow(ctx context.Context, spreadsheetID string, payment *domain.Payment) error {
	sheetName := RoleSheetTitle(payment.Role)
	rowIndex, err := g.findPaymentRow(ctx, spreadsheetID, sheetName, payment.ID)
	if err != nil {
		return err
	}
	if err := g.UpdateCell(ctx, spreadsheetID, sheetName, rowIndex, colPaymentAmount, payment.Amount.String()); err != nil {
		return err
	}
	return g.UpdateCell(ctx, spreadsheetID, sheetName, rowIndex, colPaymentComment, payment.Comment)
}

func (g *Gateway) DeletePaymentRow(ctx context.Context, spreadsheetID string, role domain.Role, paymentID int64) error {
	sheetName := RoleSheetTitle(role)
	rowIndex, err := g.findPaymentRow(ctx, spreadsheetID, sheetName, paymentID)
	if err != nil {
		return err
	}
	return g.DeleteRow(ctx, spreadsheetID, sheetName, rowIndex)
}

func (g *Gateway) ReadPaymentRows(ctx context.Context, spreadsheetID string, role domain.Role) ([]domain.Payment, error) {
	rows, err := g.ReadRows(ctx, spreadsheetID, RoleSheetTitle(role))
	if err != nil {
		return nil, err
	}
	var payments []domain.Payment
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if p, ok := PaymentFromRow(row, role); ok {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

func (g *Gateway) findPaymentRow(ctx context.Context, spreadsheetID, sheetName string, paymentID int64) (int, error) {
	rows, err := g.ReadRows(ctx, spreadsheetID, sheetName)
	if err != nil {
		return 0, err
	}
	want := strconv.FormatInt(paymentID, 10)
	for i, row := range rows {
		if len(row) > colPaymentID && row[colPaymentID] == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: payment %d not found in %s/%s", apperrors.ErrGatewayPermanent, paymentID, spreadsheetID, sheetName)
}
