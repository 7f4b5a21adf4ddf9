package engine

import (
	"time"

	"github.com/seenimoa/fundline/pkg/timeutil"
)

// Quarterly window bounds, in days. A standard calendar year is accepted
// with slack for irregular reporting gaps; the half-year window is the
// degraded two-quarter proxy.
const (
	fourQuarterMinSpan = 270
	fourQuarterMaxSpan = 380
	twoQuarterMinSpan  = 170
	twoQuarterMaxSpan  = 190
)

// TrailingTwelveMonths synthesizes a trailing-twelve-month value at the
// eval date from quarterly and annual point series for one statement
// field. Both inputs must be sorted ascending by date; points after the
// eval date are ignored.
//
// The decision policy is evaluated in order, first match wins:
//
//  1. Annual-is-freshest: when the most recent annual point is at least as
//     new as the most recent quarterly point (or no quarterly data
//     exists), its value is returned directly — an annual figure is
//     definitionally a trailing twelve months.
//  2. Four-quarter window: the most recent four consecutive quarters
//     spanning 270–380 days are summed.
//  3. Two-quarter window: two consecutive quarters spanning 170–190 days
//     are summed. The sum is intentionally NOT doubled: it understates a
//     true TTM by roughly half, but downstream consumers depend on the
//     existing magnitude of this degraded proxy.
//  4. Annual fallback: a stale annual value beats no value.
//  5. No data: nil.
func TrailingTwelveMonths(evalDate time.Time, quarterly, annual []FieldPoint) *float64 {
	evalDate = timeutil.Midnight(evalDate)
	quarterly = upTo(quarterly, evalDate)
	annual = upTo(annual, evalDate)

	// Tier 1: annual at least as fresh as quarterly.
	if len(annual) > 0 {
		latestAnnual := annual[len(annual)-1]
		if len(quarterly) == 0 || !latestAnnual.Date.Before(quarterly[len(quarterly)-1].Date) {
			v := latestAnnual.Value
			return &v
		}
	}

	// Tier 2: most recent four consecutive quarters covering ~a year.
	for i := len(quarterly) - 1; i >= 3; i-- {
		span := timeutil.DaysBetween(quarterly[i-3].Date, quarterly[i].Date)
		if span >= fourQuarterMinSpan && span <= fourQuarterMaxSpan {
			sum := quarterly[i].Value + quarterly[i-1].Value + quarterly[i-2].Value + quarterly[i-3].Value
			return &sum
		}
	}

	// Tier 3: two consecutive quarters covering ~half a year.
	for i := len(quarterly) - 1; i >= 1; i-- {
		span := timeutil.DaysBetween(quarterly[i-1].Date, quarterly[i].Date)
		if span >= twoQuarterMinSpan && span <= twoQuarterMaxSpan {
			sum := quarterly[i].Value + quarterly[i-1].Value
			return &sum
		}
	}

	// Tier 4: stale annual fallback.
	if len(annual) > 0 {
		v := annual[len(annual)-1].Value
		return &v
	}

	// Tier 5: nothing to report.
	return nil
}
