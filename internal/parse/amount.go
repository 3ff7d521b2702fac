package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The bank exports use `.` as thousands separator and `,` as decimal
// separator, sometimes with currency symbols or stray characters mixed in.
var nonAmountChars = regexp.MustCompile(`[^0-9,]`)

// Amount converts a locale-formatted amount cell to a decimal. Anything
// that is not a digit or the decimal comma is stripped first. Returns
// false when nothing parseable remains.
func Amount(s string) (decimal.Decimal, bool) {
	cleaned := nonAmountChars.ReplaceAllString(s, "")
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.Replace(cleaned, ",", ".", 1))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// AmountOrZero is the cell-level recovery path: a malformed amount becomes
// zero and the run continues.
func AmountOrZero(s string) decimal.Decimal {
	d, _ := Amount(s)
	return d
}

var dayFirstFormats = []string{
	"2/1/2006",
	"2/1/2006 15:04:05",
	"2-1-2006",
	"2/1/06",
}

// DayFirstDate parses a day-first registry date. Returns nil instead of an
// error: registry rows with unparseable dates keep a null date.
func DayFirstDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dayFirstFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// MonthFirstDate parses the deferred registry's US-style m/d/y date.
func MonthFirstDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{"1/2/2006", "1/2/06"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
