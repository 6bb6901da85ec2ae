package domain

import "time"

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = time.DateOnly

// Years representable in DateLayout.
const (
	MinYear = 1
	MaxYear = 9999
)

// maxDaySpan exceeds the distance between any two representable dates.
const maxDaySpan = (MaxYear - MinYear + 1) * 366

// InDateRange reports whether t's year can be written and read back in DateLayout.
func InDateRange(t time.Time) bool {
	y := t.Year()
	return y >= MinYear && y <= MaxYear
}

// DateOf truncates t to its calendar date at midnight UTC.
// The calendar date is taken in t's own location, so 23:30 local stays on the same day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the calendar date days after t (negative moves backwards).
func AddDays(t time.Time, days int) time.Time {
	return DateOf(t).AddDate(0, 0, days)
}

// EqualFoldASCII reports whether a and b are equal under ASCII case folding.
// Unlike strings.EqualFold it does not match non-ASCII letters such as the
// Kelvin sign to K, which keeps it in line with SQL upper()/lower().
func EqualFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// ParseDate parses a YYYY-MM-DD string into a calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return DateOf(t).Format(DateLayout)
}
