package sheets_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cashbookhq/cashbook-bot/internal/adapters/sheets"
	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
)

func row(id, date string) []string {
	return []string{id, date, "Ani", "office", "paper", "1500"}
}

func TestInsertIndexForDate(t *testing.T) {
	dataRows := [][]string{
		row("cb-a", "05.10.24"),
		row("cb-b", "10.10.24"),
		row("cb-c", "20.10.24"),
	}

	tests := []struct {
		name string
		date string
		want int
	}{
		{name: "before everything", date: "2024-10-01", want: 0},
		{name: "between rows", date: "2024-10-12", want: 2},
		{name: "equal date goes after", date: "2024-10-10", want: 2},
		{name: "after everything", date: "2024-10-25", want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sheets.InsertIndexForDate(dataRows, tt.date))
		})
	}
}

func TestInsertIndexForDateUnparseableSentinels(t *testing.T) {
	dataRows := [][]string{
		row("cb-a", "05.10.24"),
		row("cb-b", "totals"), // footer-style row, sorts to the end
	}

	// A dated row lands before the unparseable one.
	assert.Equal(t, 1, sheets.InsertIndexForDate(dataRows, "2024-10-10"))
	// An undated row goes after everything.
	assert.Equal(t, 2, sheets.InsertIndexForDate(dataRows, ""))
}

func TestInsertIndexForDateEmptySheet(t *testing.T) {
	assert.Equal(t, 0, sheets.InsertIndexForDate(nil, "2024-10-10"))
}

func TestRecordRowIndex(t *testing.T) {
	worksheet := [][]string{
		{"ID", "Date", "Supplier", "Direction", "Description", "Amount"},
		row("cb-a", "05.10.24"),
		row("cb-b", "10.10.24"),
	}

	idx, ok := sheets.RecordRowIndex(worksheet, "cb-b")
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = sheets.RecordRowIndex(worksheet, "cb-x")
	assert.False(t, ok)
	_, ok = sheets.RecordRowIndex(nil, "cb-a")
	assert.False(t, ok)
}

func TestDateChangeReordersRows(t *testing.T) {
	worksheet := [][]string{
		{"ID", "Date", "Supplier", "Direction", "Description", "Amount"},
		row("cb-a", "05.10.24"),
		row("cb-b", "10.10.24"),
		row("cb-c", "20.10.24"),
	}

	// A date change deletes the located row and re-inserts it date-sorted.
	moved := &domain.Record{
		ID:          "cb-b",
		Date:        "2024-10-25",
		Supplier:    "Ani",
		Direction:   "office",
		Description: "paper",
		Amount:      decimal.NewFromInt(1500),
	}

	idx, ok := sheets.RecordRowIndex(worksheet, moved.ID)
	require.True(t, ok)
	worksheet = append(worksheet[:idx], worksheet[idx+1:]...)

	insertAt := sheets.InsertIndexForDate(worksheet[1:], moved.Date) + 1
	assert.Equal(t, 3, insertAt)
	worksheet = append(worksheet[:insertAt], append([][]string{sheets.RecordToRow(moved)}, worksheet[insertAt:]...)...)

	var order [][2]string
	for _, r := range worksheet[1:] {
		order = append(order, [2]string{r[0], r[1]})
	}
	assert.Equal(t, [][2]string{
		{"cb-a", "05.10.24"},
		{"cb-c", "20.10.24"},
		{"cb-b", "25.10.24"},
	}, order)
}

func TestRecordToRow(t *testing.T) {
	rec := &domain.Record{
		ID:          "cb-0a1b2c3d",
		Date:        "2024-10-10",
		Supplier:    "Ani",
		Direction:   "office",
		Description: "paper",
		Amount:      decimal.NewFromInt(1500),
	}
	assert.Equal(t, []string{"cb-0a1b2c3d", "10.10.24", "Ani", "office", "paper", "1500"}, sheets.RecordToRow(rec))
}

func TestRecordToRowOmission(t *testing.T) {
	rec := &domain.Record{
		ID:       "cb-0a1b2c3d",
		Date:     "2024-10-10",
		Supplier: "Ani",
		Amount:   decimal.Zero,
	}
	got := sheets.RecordToRow(rec)
	assert.Equal(t, "0", got[5])
	assert.Equal(t, "", got[4])
}
