// Package timeutil normalizes the heterogeneous date representations found
// in stored statement data and request parameters into comparable UTC
// calendar dates, and provides the calendar helpers the daily series
// materializer walks with.
package timeutil

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the canonical wire format for dates.
const DateLayout = "2006-01-02"

// layouts accepted by ParseFlexible, tried in order. Ingested records have
// been observed with all of these.
var layouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"Jan 02, 2006",
	"2 Jan 2006",
}

// ParseFlexible normalizes a date representation into a UTC calendar date
// (midnight). It accepts time.Time values, strings in several layouts, and
// unix-second timestamps encoded as strings or integers.
func ParseFlexible(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return Midnight(d), nil
	case *time.Time:
		if d == nil {
			return time.Time{}, fmt.Errorf("nil date")
		}
		return Midnight(*d), nil
	case int64:
		return Midnight(time.Unix(d, 0).UTC()), nil
	case int:
		return Midnight(time.Unix(int64(d), 0).UTC()), nil
	case float64:
		return Midnight(time.Unix(int64(d), 0).UTC()), nil
	case string:
		return parseString(d)
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}

func parseString(s string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Midnight(t), nil
		}
	}
	// Unix seconds as a bare integer string.
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs > 0 {
		return Midnight(time.Unix(secs, 0).UTC()), nil
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// ParseDate parses a strict YYYY-MM-DD string as used in API parameters.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Midnight(t), nil
}

// FormatDate formats a time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Midnight truncates a time to its UTC calendar date.
func Midnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC calendar date.
func Today() time.Time {
	return Midnight(time.Now())
}

// YearStart returns January 1 of the given time's year, used as the
// default start when a request omits the range.
func YearStart(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b. Negative when
// b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)).Hours() / 24)
}

// EachDay calls fn for every calendar day from start through end inclusive.
// It does nothing when end precedes start.
func EachDay(start, end time.Time, fn func(day time.Time)) {
	for day := Midnight(start); !day.After(Midnight(end)); day = day.AddDate(0, 0, 1) {
		fn(day)
	}
}
