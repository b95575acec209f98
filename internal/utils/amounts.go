package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var amountReplacer = strings.NewReplacer(
	"\u00a0", "", // no-break space
	"\u202f", "", // narrow no-break space
	" ", "",
	",", ".",
)

// NormalizeAmountString strips thousands separators and unifies the decimal
// separator to a dot. Spreadsheet cells arrive with U+00A0/U+202F/space group
// separators and either comma or dot decimals.
func NormalizeAmountString(s string) string {
	return amountReplacer.Replace(strings.TrimSpace(s))
}

// ParseAmount parses a user- or spreadsheet-supplied amount. The zero value is
// legal: an omission record carries amount 0.
func ParseAmount(s string) (decimal.Decimal, error) {
	norm := NormalizeAmountString(s)
	if norm == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(norm)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed amount %q: %w", s, err)
	}
	return d, nil
}

// ParsePositiveAmount parses an amount that must be strictly positive, as
// required for payments.
func ParsePositiveAmount(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive, got %s", d)
	}
	return d, nil
}
