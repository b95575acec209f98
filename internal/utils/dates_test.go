package utils_test

import (
	"testing"

	"github.com/cashbookhq/cashbook-bot/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "canonical passthrough", input: "2024-10-10", want: "2024-10-10"},
		{name: "dots", input: "10.10.24", want: "2024-10-10"},
		{name: "dashes", input: "10-10-24", want: "2024-10-10"},
		{name: "slashes", input: "10/10/24", want: "2024-10-10"},
		{name: "mixed separators", input: "5.10-24", want: "2024-10-05"},
		{name: "packed six digits", input: "101024", want: "2024-10-10"},
		{name: "four digit year last", input: "10.10.2024", want: "2024-10-10"},
		{name: "year first with dots", input: "2024.10.05", want: "2024-10-05"},
		{name: "day month swap", input: "10.25.24", want: "2024-10-25"},
		{name: "no swap when day first", input: "25.10.24", want: "2024-10-25"},
		{name: "whitespace tolerated", input: " 10.10.24 ", want: "2024-10-10"},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "not-a-date", wantErr: true},
		{name: "two components", input: "10.24", wantErr: true},
		{name: "month thirteen both", input: "13.13.24", wantErr: true},
		{name: "day overflow", input: "32.01.24", wantErr: true},
		{name: "february 30", input: "30.02.24", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := utils.NormalizeDate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDisplayDate(t *testing.T) {
	assert.Equal(t, "10.10.24", utils.DisplayDate("2024-10-10"))
	assert.Equal(t, "05.01.25", utils.DisplayDate("2025-01-05"))
	// Unparseable values pass through so the mirror can sort them to the end.
	assert.Equal(t, "garbage", utils.DisplayDate("garbage"))
	assert.Equal(t, "", utils.DisplayDate(""))
}

func TestDisplayRoundTrip(t *testing.T) {
	canonical := "2024-03-07"
	back, err := utils.ParseDisplayDate(utils.DisplayDate(canonical))
	require.NoError(t, err)
	assert.Equal(t, canonical, back)
}
