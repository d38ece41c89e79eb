// internal/normalize/dates.go
// Package normalize coerces loosely-typed backend values into canonical
// display forms. Every function here is total: malformed input degrades to a
// documented fallback, never a panic.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ymdPattern = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})`)
	mdyPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})`)
)

// Generic timestamp layouts tried in order after the explicit date patterns.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	time.RFC1123,
}

// ParseDateOnly extracts a calendar date from YYYY-MM-DD, YYYY/MM/DD,
// MM/DD/YYYY, or any generic timestamp. The result is built from the
// extracted year/month/day components so the calendar date is identical in
// every timezone. Returns ok=false when nothing date-like is found.
func ParseDateOnly(value interface{}) (time.Time, bool) {
	s := strings.TrimSpace(Stringify(value))
	if s == "" {
		return time.Time{}, false
	}

	if m := ymdPattern.FindStringSubmatch(s); m != nil {
		return makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := mdyPattern.FindStringSubmatch(s); m != nil {
		return makeDate(atoi(m[3]), atoi(m[1]), atoi(m[2]))
	}

	if t, ok := ParseDateTime(s); ok {
		y, mo, d := t.Date()
		return makeDate(y, int(mo), d)
	}

	return time.Time{}, false
}

// ParseDateTime parses a generic timestamp. Returns ok=false on failure.
func ParseDateTime(value interface{}) (time.Time, bool) {
	s := strings.TrimSpace(Stringify(value))
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	// Epoch seconds or milliseconds also show up in old payloads.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), true
		}
		return time.Unix(n, 0).UTC(), true
	}

	return time.Time{}, false
}

// EpochMillis returns a consistent numeric sort key for a timestamp value.
// Unparsable input yields 0, which sorts unparsable dates first ascending.
func EpochMillis(value interface{}) int64 {
	if t, ok := ParseDateTime(value); ok {
		return t.UnixMilli()
	}
	if t, ok := ParseDateOnly(value); ok {
		return t.UnixMilli()
	}
	return 0
}

// FormatDateTime renders a locale-style "M/D/YYYY, h:mm AM/PM" string, or ""
// when the value cannot be parsed.
func FormatDateTime(value interface{}) string {
	t, ok := ParseDateTime(value)
	if !ok {
		return ""
	}
	return t.Format("1/2/2006, 3:04 PM")
}

// FormatDateMMDDYYYY renders a zero-padded MM/DD/YYYY string. Unparsable
// values fall back to the raw string, or "-" when there is nothing to show.
func FormatDateMMDDYYYY(value interface{}) string {
	t, ok := ParseDateOnly(value)
	if !ok {
		raw := strings.TrimSpace(Stringify(value))
		if raw == "" {
			return "-"
		}
		return raw
	}
	return t.Format("01/02/2006")
}

var timePattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?(?::\d{2})?\s*([AaPp][Mm])?$`)

// FormatTime12h renders HH:MM[:SS] 24-hour input, or ambiguous
// H[:MM][AM|PM] input, as "h:mm AM/PM". Hour-only input without a meridiem
// is split at the 12/24 threshold. Totally unparsable input comes back as-is.
func FormatTime12h(value string) string {
	s := strings.TrimSpace(value)
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return value
	}

	hour := atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute = atoi(m[2])
	}
	if hour > 23 || minute > 59 {
		return value
	}

	meridiem := strings.ToUpper(m[3])
	if meridiem == "" {
		if hour >= 12 {
			meridiem = "PM"
		} else {
			meridiem = "AM"
		}
	}
	if hour > 12 {
		hour -= 12
	}
	if hour == 0 {
		hour = 12
	}

	return fmt.Sprintf("%d:%02d %s", hour, minute, meridiem)
}

// IsExpired reports whether a date-only value falls strictly before today's
// midnight. Absence of a date is never "expired".
func IsExpired(value interface{}, today time.Time) bool {
	d, ok := ParseDateOnly(value)
	if !ok {
		return false
	}
	y, mo, dd := today.Date()
	midnight := time.Date(y, mo, dd, 0, 0, 0, 0, time.UTC)
	return d.Before(midnight)
}

// AgeFromBirthDate computes whole years between a birth date and now,
// decremented by one when the current month/day precedes the birth
// month/day. Results outside [0, 120] are rejected.
func AgeFromBirthDate(value interface{}, now time.Time) (int, bool) {
	dob, ok := ParseDateOnly(value)
	if !ok {
		return 0, false
	}

	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 || age > 120 {
		return 0, false
	}
	return age, true
}

func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. Feb 30), which would silently
	// change the calendar date; treat that as a parse failure.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
