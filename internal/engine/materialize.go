package engine

import (
	"time"

	"github.com/seenimoa/fundline/pkg/models"
	"github.com/seenimoa/fundline/pkg/timeutil"
)

// Materialize walks the calendar from start through end inclusive and
// emits one point per day, carrying the last known value forward between
// reconciliation events. Events must be sorted ascending by date. Days
// before the first event emit nil; values are never interpolated or
// extrapolated backward.
func Materialize(start, end time.Time, events []models.SeriesPoint) []models.SeriesPoint {
	start = timeutil.Midnight(start)
	end = timeutil.Midnight(end)
	if end.Before(start) {
		return nil
	}

	out := make([]models.SeriesPoint, 0, timeutil.DaysBetween(start, end)+1)

	var last *float64
	cursor := 0
	timeutil.EachDay(start, end, func(day time.Time) {
		for cursor < len(events) && !events[cursor].Date.After(day) {
			last = events[cursor].Value
			cursor++
		}
		out = append(out, models.SeriesPoint{Date: day, Value: last})
	})
	return out
}

// combine merges two daily series of equal length day-by-day. The combine
// function receives the two values for a day (either may be nil) and
// returns the output value.
func combine(a, b []models.SeriesPoint, fn func(x, y *float64) *float64) []models.SeriesPoint {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]models.SeriesPoint, n)
	for i := 0; i < n; i++ {
		out[i] = models.SeriesPoint{Date: a[i].Date, Value: fn(a[i].Value, b[i].Value)}
	}
	return out
}

// div divides numerator by denominator, guarding nil and zero: a missing
// or zero denominator yields nil, never an infinity or a panic.
func div(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	v := *num / *den
	return &v
}

// divPct is div scaled to a percentage.
func divPct(num, den *float64) *float64 {
	v := div(num, den)
	if v == nil {
		return nil
	}
	pct := *v * 100
	return &pct
}

// divPositive divides only when the denominator is strictly positive. Used
// where a sign-flipped ratio would mislead (interest against negative
// income).
func divPositive(num, den *float64) *float64 {
	if den == nil || *den <= 0 {
		return nil
	}
	return div(num, den)
}
