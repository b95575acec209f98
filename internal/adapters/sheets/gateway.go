package sheets

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/cashbookhq/cashbook-bot/internal/apperrors"
	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
	"github.com/cashbookhq/cashbook-bot/internal/core/ports"
)

// Gateway translates store-level operations into Google Sheets API calls.
// It never retries: transient failures are surfaced as
// apperrors.ErrGatewayTransient for the mirror worker to handle.
type Gateway struct {
	sheets *sheetsapi.Service
	drive  *drive.Service
}

// NewGateway builds a gateway from a service-account credentials file.
func NewGateway(ctx context.Context, credentialsPath string) (*Gateway, error) {
	sheetsSvc, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}
	return &Gateway{sheets: sheetsSvc, drive: driveSvc}, nil
}

// Ensure Gateway implements the full gateway surface.
var _ ports.SpreadsheetGateway = (*Gateway)(nil)

// classify maps an API error onto the transient/permanent split. Rate limits,
// server errors and network failures are retryable; bad requests, missing
// sheets and credential problems are not.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code >= 500 {
			return fmt.Errorf("%w: %v", apperrors.ErrGatewayTransient, err)
		}
		return fmt.Errorf("%w: %v", apperrors.ErrGatewayPermanent, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", apperrors.ErrGatewayTransient, err)
	}
	return fmt.Errorf("%w: %v", apperrors.ErrGatewayTransient, err)
}

func (g *Gateway) ListSpreadsheets(ctx context.Context) ([]domain.SpreadsheetHandle, error) {
	var handles []domain.SpreadsheetHandle
	pageToken := ""
	for {
		call := g.drive.Files.List().
			Q("mimeType='application/vnd.google-apps.spreadsheet' and trashed=false").
			Fields("nextPageToken, files(id, name)").
			PageSize(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, classify(err)
		}
		for _, f := range list.Files {
			handles = append(handles, domain.SpreadsheetHandle{ID: f.Id, Title: f.Name})
		}
		if list.NextPageToken == "" {
			return handles, nil
		}
		pageToken = list.NextPageToken
	}
}

func (g *Gateway) Describe(ctx context.Context, spreadsheetID string) (*domain.SpreadsheetInfo, error) {
	ss, err := g.sheets.Spreadsheets.Get(spreadsheetID).
		Fields("properties.title,sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}

	info := &domain.SpreadsheetInfo{ID: spreadsheetID, Title: ss.Properties.Title}
	for _, sh := range ss.Sheets {
		ws := domain.WorksheetInfo{Title: sh.Properties.Title, SheetID: sh.Properties.SheetId}
		if sh.Properties.GridProperties != nil {
			ws.RowCount = sh.Properties.GridProperties.RowCount
			ws.ColCount = sh.Properties.GridProperties.ColumnCount
		}
		info.Worksheets = append(info.Worksheets, ws)
	}
	return info, nil
}

// sheetID resolves a worksheet title to its numeric id, required by the
// structural batchUpdate requests.
func (g *Gateway) sheetID(ctx context.Context, spreadsheetID, sheetName string) (int64, error) {
	info, err := g.Describe(ctx, spreadsheetID)
	if err != nil {
		return 0, err
	}
	for _, ws := range info.Worksheets {
		if ws.Title == sheetName {
			return ws.SheetID, nil
		}
	}
	return 0, fmt.Errorf("%w: worksheet %q not found in %s", apperrors.ErrGatewayPermanent, sheetName, spreadsheetID)
}

func (g *Gateway) ReadRows(ctx context.Context, spreadsheetID, sheetName string) ([][]string, error) {
	resp, err := g.sheets.Spreadsheets.Values.Get(spreadsheetID, quoteSheet(sheetName)).
		Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (g *Gateway) AppendRow(ctx context.Context, spreadsheetID, sheetName string, row []string) error {
	return g.AppendRows(ctx, spreadsheetID, sheetName, [][]string{row})
}

func (g *Gateway) AppendRows(ctx context.Context, spreadsheetID, sheetName string, rows [][]string) error {
	_, err := g.sheets.Spreadsheets.Values.Append(spreadsheetID, quoteSheet(sheetName), toValueRange(rows)).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	return classify(err)
}

func (g *Gateway) InsertRowAt(ctx context.Context, spreadsheetID, sheetName string, row []string, rowIndex int) error {
	sheetID, err := g.sheetID(ctx, spreadsheetID, sheetName)
	if err != nil {
		return err
	}

	insert := &sheetsapi.Request{
		InsertDimension: &sheetsapi.InsertDimensionRequest{
			Range: &sheetsapi.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "ROWS",
				StartIndex: int64(rowIndex),
				EndIndex:   int64(rowIndex) + 1,
			},
			InheritFromBefore: rowIndex > 0,
		},
	}
	_, err = g.sheets.Spreadsheets.BatchUpdate(spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{insert},
	}).Context(ctx).Do()
	if err != nil {
		return classify(err)
	}

	a1 := fmt.Sprintf("%s!A%d", quoteSheet(sheetName), rowIndex+1)
	_, err = g.sheets.Spreadsheets.Values.Update(spreadsheetID, a1, toValueRange([][]string{row})).
		ValueInputOption("RAW").
		Context(ctx).Do()
	return classify(err)
}

func (g *Gateway) UpdateCell(ctx context.Context, spreadsheetID, sheetName string, rowIndex, colIndex int, value string) error {
	a1 := fmt.Sprintf("%s!%s%d", quoteSheet(sheetName), columnLetter(colIndex), rowIndex+1)
	_, err := g.sheets.Spreadsheets.Values.Update(spreadsheetID, a1, toValueRange([][]string{{value}})).
		ValueInputOption("RAW").
		Context(ctx).Do()
	return classify(err)
}

func (g *Gateway) UpdateRange(ctx context.Context, spreadsheetID, sheetName, a1Range string, rows [][]string) error {
	full := fmt.Sprintf("%s!%s", quoteSheet(sheetName), a1Range)
	_, err := g.sheets.Spreadsheets.Values.Update(spreadsheetID, full, toValueRange(rows)).
		ValueInputOption("RAW").
		Context(ctx).Do()
	return classify(err)
}

func (g *Gateway) DeleteRow(ctx context.Context, spreadsheetID, sheetName string, rowIndex int) error {
	sheetID, err := g.sheetID(ctx, spreadsheetID, sheetName)
	if err != nil {
		return err
	}
	_, err = g.sheets.Spreadsheets.BatchUpdate(spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			DeleteDimension: &sheetsapi.DeleteDimensionRequest{
				Range: &sheetsapi.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex),
					EndIndex:   int64(rowIndex) + 1,
				},
			},
		}},
	}).Context(ctx).Do()
	return classify(err)
}

func (g *Gateway) Clear(ctx context.Context, spreadsheetID, sheetName string) error {
	_, err := g.sheets.Spreadsheets.Values.Clear(spreadsheetID, quoteSheet(sheetName), &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do()
	return classify(err)
}

func toValueRange(rows [][]string) *sheetsapi.ValueRange {
	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = make([]any, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}
	return &sheetsapi.ValueRange{Values: values}
}

// quoteSheet wraps a worksheet title in single quotes for A1 notation;
// embedded quotes are doubled.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// columnLetter converts a zero-based column index to its A1 letter.
func columnLetter(col int) string {
	letters := ""
	for col >= 0 {
		letters = string(rune('A'+col%26)) + letters
		col = col/26 - 1
	}
	return letters
}
