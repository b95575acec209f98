package sheets

import (
	"context"
	"fmt"

	"github.com/cashbookhq/cashbook-bot/internal/apperrors"
	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
	"github.com/cashbookhq/cashbook-bot/internal/utils"
)

// Record worksheet layout: six columns, header required in row 1.
const (
	colRecordID = iota
	colRecordDate
	colRecordSupplier
	colRecordDirection
	colRecordDescription
	colRecordAmount
	recordColumnCount
)

// RecordHeaders is the canonical record header row in the display language
// chosen at system scope.
var RecordHeaders = []string{"ID", "Ամսաթիվ", "Մատակարար", "Ուղղություն", "Նկարագրություն", "Գումար"}

// recordFieldColumns maps mutable record fields to worksheet columns.
var recordFieldColumns = map[domain.RecordField]int{
	domain.FieldDate:        colRecordDate,
	domain.FieldSupplier:    colRecordSupplier,
	domain.FieldDirection:   colRecordDirection,
	domain.FieldDescription: colRecordDescription,
	domain.FieldAmount:      colRecordAmount,
}

// RecordToRow encodes a record for the worksheet; dates cross the boundary in
// DD.MM.YY form.
func RecordToRow(r *domain.Record) []string {
	return []string{
		r.ID,
		utils.DisplayDate(r.Date),
		r.Supplier,
		r.Direction,
		r.Description,
		r.Amount.String(),
	}
}

// InsertIndexForDate returns the position within dataRows (header excluded)
// where a row with the given canonical date belongs: before the first row
// whose date is strictly greater. Rows with unparseable dates sort to the end,
// so a new dated row lands before them.
func InsertIndexForDate(dataRows [][]string, canonicalDate string) int {
	newDate, newErr := utils.ParseCanonical(canonicalDate)
	for i, row := range dataRows {
		if len(row) <= colRecordDate {
			return i
		}
		rowCanonical, err := utils.ParseDisplayDate(row[colRecordDate])
		if err != nil {
			// Sentinel: everything sorts before an unparseable date.
			if newErr == nil {
				return i
			}
			continue
		}
		if newErr != nil {
			continue
		}
		rowDate, err := utils.ParseCanonical(rowCanonical)
		if err != nil {
			return i
		}
		if rowDate.After(newDate) {
			return i
		}
	}
	return len(dataRows)
}

func (g *Gateway) EnsureHeaders(ctx context.Context, spreadsheetID, sheetName string) error {
	rows, err := g.ReadRows(ctx, spreadsheetID, sheetName)
	if err != nil {
		return err
	}
	if len(rows) > 0 && rowEquals(rows[0], RecordHeaders) {
		return nil
	}
	if len(rows) == 0 {
		return g.AppendRow(ctx, spreadsheetID, sheetName, RecordHeaders)
	}
	// A worksheet with content but no header gets the header inserted on top.
	if len(rows[0]) == 0 || rows[0][colRecordID] != RecordHeaders[colRecordID] {
		return g.InsertRowAt(ctx, spreadsheetID, sheetName, RecordHeaders, 0)
	}
	return g.UpdateRange(ctx, spreadsheetID, sheetName, "A1:F1", [][]string{RecordHeaders})
}

func (g *Gateway) InsertRecordSorted(ctx context.Context, record *domain.Record) error {
	if err := g.EnsureHeaders(ctx, record.SpreadsheetID, record.SheetName); err != nil {
		return err
	}
	rows, err := g.ReadRows(ctx, record.SpreadsheetID, record.SheetName)
	if err != nil {
		return err
	}
	var dataRows [][]string
	if len(rows) > 1 {
		dataRows = rows[1:]
	}
	index := InsertIndexForDate(dataRows, record.Date)
	if index == len(dataRows) {
		return g.AppendRow(ctx, record.SpreadsheetID, record.SheetName, RecordToRow(record))
	}
	// +1 for the header row.
	return g.InsertRowAt(ctx, record.SpreadsheetID, record.SheetName, RecordToRow(record), index+1)
}

func (g *Gateway) UpdateRecordRow(ctx context.Context, record *domain.Record, field domain.RecordField, prevDate string) error {
	rowIndex, err := g.findRecordRow(ctx, record.SpreadsheetID, record.SheetName, record.ID)
	if err != nil {
		return err
	}

	if field == domain.FieldDate && record.Date != prevDate {
		// A date change moves the row: delete and re-insert date-sorted.
		if err := g.DeleteRow(ctx, record.SpreadsheetID, record.SheetName, rowIndex); err != nil {
			return err
		}
		return g.InsertRecordSorted(ctx, record)
	}

	colIndex, ok := recordFieldColumns[field]
	if !ok {
		return fmt.Errorf("%w: field %q has no worksheet column", apperrors.ErrGatewayPermanent, field)
	}
	return g.UpdateCell(ctx, record.SpreadsheetID, record.SheetName, rowIndex, colIndex, RecordToRow(record)[colIndex])
}

func (g *Gateway) DeleteRecordRow(ctx context.Context, spreadsheetID, sheetName, recordID string) error {
	rowIndex, err := g.findRecordRow(ctx, spreadsheetID, sheetName, recordID)
	if err != nil {
		return err
	}
	return g.DeleteRow(ctx, spreadsheetID, sheetName, rowIndex)
}

// RecordRowIndex locates a record by id in the first column; the returned
// index is zero-based over the whole worksheet.
func RecordRowIndex(rows [][]string, recordID string) (int, bool) {
	for i, row := range rows {
		if len(row) > colRecordID && row[colRecordID] == recordID {
			return i, true
		}
	}
	return 0, false
}

func (g *Gateway) findRecordRow(ctx context.Context, spreadsheetID, sheetName, recordID string) (int, error) {
	rows, err := g.ReadRows(ctx, spreadsheetID, sheetName)
	if err != nil {
		return 0, err
	}
	if i, ok := RecordRowIndex(rows, recordID); ok {
		return i, nil
	}
	return 0, fmt.Errorf("%w: record %s not found in %s/%s", apperrors.ErrGatewayPermanent, recordID, spreadsheetID, sheetName)
}

func rowEquals(a, b []string) bool {
	if len(a) < len(b) {
		return false
	}
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
