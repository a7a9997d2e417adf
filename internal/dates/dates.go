// Package dates converts between ISO calendar dates and the month/year pairs bound to editing controls.
package dates

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/resume-studio/internal/types"
)

// ISOLayout is the wire format for calendar dates.
const ISOLayout = "2006-01-02"

// DefaultYearSpan is the number of years offered by Years when no span is given.
const DefaultYearSpan = 50

// Months lists the supported month names in calendar order.
var Months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var layouts = []string{
	ISOLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Years returns the supported year range, most recent first, ending at now's year.
func Years(now time.Time, span int) []string {
	if span <= 0 {
		span = DefaultYearSpan
	}
	years := make([]string, span)
	for i := range years {
		years[i] = strconv.Itoa(now.Year() - i)
	}
	return years
}

// Decode parses an ISO date into a month/year pair.
// A nil pointer decodes to the zero pair.
func Decode(iso *string) types.MonthYear {
	if iso == nil {
		return types.MonthYear{}
	}
	return DecodeString(*iso)
}

// DecodeString parses an ISO date into a month/year pair.
// Blank or unparseable input yields the zero pair; unparseable input is logged.
func DecodeString(iso string) types.MonthYear {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return types.MonthYear{}
	}
	t, err := parse(iso)
	if err != nil {
		log.Printf("[dates] ignoring unparseable date %q: %v", iso, err)
		return types.MonthYear{}
	}
	return types.MonthYear{
		Month: Months[t.Month()-1],
		Year:  fmt.Sprintf("%04d", t.Year()),
	}
}

// Encode returns the ISO date for the first day of the given month.
// It returns "" when either component is missing or unrecognized.
func Encode(month, year string) string {
	idx := MonthIndex(month)
	if idx < 0 || !validYear(year) {
		return ""
	}
	return fmt.Sprintf("%s-%02d-01", year, idx+1)
}

// EncodePtr is Encode for a MonthYear, returning nil instead of "".
func EncodePtr(m types.MonthYear) *string {
	iso := Encode(m.Month, m.Year)
	if iso == "" {
		return nil
	}
	return &iso
}

// MonthIndex returns the zero-based index of a month name, or -1.
func MonthIndex(month string) int {
	for i, m := range Months {
		if m == month {
			return i
		}
	}
	return -1
}

func validYear(year string) bool {
	if len(year) != 4 {
		return false
	}
	for i := 0; i < len(year); i++ {
		if year[i] < '0' || year[i] > '9' {
			return false
		}
	}
	return true
}

func parse(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
