package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date handling runs in three representations: canonical YYYY-MM-DD in the
// store, display DD.MM.YY at the spreadsheet boundary, and free-form at parse
// input.
const (
	CanonicalDateLayout = "2006-01-02"
	DisplayDateLayout   = "02.01.06"
)

var dateSeparators = regexp.MustCompile(`[./\- ]+`)

// NormalizeDate parses a free-form date string into canonical form. It
// tolerates the separators ". - /", accepts six-digit packed DDMMYY, two- or
// four-digit years, and swaps day/month when the pair order makes the month
// invalid (first pair over 12 with a second pair that fits a month, or the
// reverse).
func NormalizeDate(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", fmt.Errorf("empty date")
	}

	// Already canonical.
	if t, err := time.Parse(CanonicalDateLayout, s); err == nil {
		return t.Format(CanonicalDateLayout), nil
	}

	var day, month, year int
	if len(s) == 6 && isDigits(s) {
		day, _ = strconv.Atoi(s[0:2])
		month, _ = strconv.Atoi(s[2:4])
		year, _ = strconv.Atoi(s[4:6])
	} else {
		parts := dateSeparators.Split(s, -1)
		if len(parts) != 3 {
			return "", fmt.Errorf("unrecognized date %q", input)
		}
		var err error
		if day, err = strconv.Atoi(parts[0]); err != nil {
			return "", fmt.Errorf("unrecognized date %q", input)
		}
		if month, err = strconv.Atoi(parts[1]); err != nil {
			return "", fmt.Errorf("unrecognized date %q", input)
		}
		if year, err = strconv.Atoi(parts[2]); err != nil {
			return "", fmt.Errorf("unrecognized date %q", input)
		}
	}

	// Four-digit year in front means the input was year-first.
	if day >= 1000 {
		day, year = year, day
	}

	if year < 100 {
		year += 2000
	}

	// Day/month swap: accept month-first input as long as only one order is
	// a valid calendar date.
	if month > 12 && day <= 12 {
		day, month = month, day
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", fmt.Errorf("invalid calendar date %q", input)
	}
	return t.Format(CanonicalDateLayout), nil
}

// DisplayDate converts a canonical date to the spreadsheet's DD.MM.YY form.
// Empty or unparseable input is returned unchanged; the mirror treats such
// values as sort-to-end sentinels.
func DisplayDate(canonical string) string {
	t, err := time.Parse(CanonicalDateLayout, canonical)
	if err != nil {
		return canonical
	}
	return t.Format(DisplayDateLayout)
}

// ParseDisplayDate converts a DD.MM.YY spreadsheet cell back to canonical form.
func ParseDisplayDate(display string) (string, error) {
	return NormalizeDate(display)
}

// ParseCanonical parses a canonical date into a time.Time.
func ParseCanonical(canonical string) (time.Time, error) {
	return time.Parse(CanonicalDateLayout, canonical)
}

// Today returns the current date in canonical form.
func Today() string {
	return time.Now().Format(CanonicalDateLayout)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
