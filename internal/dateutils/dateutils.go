// Package dateutils parses the date columns of UK bank statement exports.
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// Date layouts seen in UK bank exports.
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutUK       = "02/01/2006"
	DateLayoutUKShort  = "2/1/2006"
	DateLayoutUKDash   = "02-01-2006"
	DateLayoutDayMonth = "02 Jan 2006"
	DateLayoutDayMon   = "2 Jan 2006"
	DateLayoutDashMon  = "02-Jan-2006"
	DateLayoutFull     = "2006-01-02 15:04:05"
	DateLayoutFullMin  = "2006-01-02 15:04"
)

// UKFormats is the ordered list of layouts tried by ParseDate.
// Day-first layouts come before anything ambiguous.
var UKFormats = []string{
	DateLayoutUK,
	DateLayoutUKShort,
	DateLayoutUKDash,
	DateLayoutDayMonth,
	DateLayoutDayMon,
	DateLayoutDashMon,
	DateLayoutISO,
	DateLayoutFull,
	DateLayoutFullMin,
}

// ParseDate parses a date with the UK layouts and returns the UTC calendar date.
func ParseDate(dateStr string) (time.Time, error) {
	return ParseDateWith(dateStr, UKFormats...)
}

// ParseDateWith tries each layout in order.
func ParseDateWith(dateStr string, layouts ...string) (time.Time, error) {
	cleaned := CleanDateString(dateStr)
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// CleanDateString trims and collapses whitespace.
func CleanDateString(dateStr string) string {
	return strings.Join(strings.Fields(dateStr), " ")
}

// ConvertPattern turns a dd/MM/yyyy style pattern into a Go layout.
// Strings that already look like Go layouts are returned unchanged.
func ConvertPattern(pattern string) string {
	if strings.Contains(pattern, "2006") || strings.Contains(pattern, "Jan") {
		return pattern
	}
	replacer := strings.NewReplacer(
		"yyyy", "2006",
		"yy", "06",
		"MMMM", "January",
		"MMM", "Jan",
		"MM", "01",
		"dd", "02",
		"HH", "15",
		"mm", "04",
		"ss", "05",
	)
	layout := replacer.Replace(pattern)
	// Single-letter tokens only after the double-letter ones are gone.
	layout = strings.NewReplacer("M", "1", "d", "2").Replace(layout)
	return layout
}

// ToISODate formats a date as YYYY-MM-DD.
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}
