// Package engine implements the fundamentals reconciliation and synthetic
// ratio engine: trailing-twelve-month synthesis from mismatched quarterly
// and annual disclosures, shares-outstanding resolution, currency
// normalization, daily carry-forward materialization and the ratio
// catalogue layered on top.
package engine

import (
	"sort"
	"time"
)

// FieldPoint is one disclosed value of a single statement field.
type FieldPoint struct {
	Date  time.Time
	Value float64
}

// sortPoints orders points ascending by date in place.
func sortPoints(points []FieldPoint) {
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
}

// upTo returns the points dated on or before the eval date. Input must be
// sorted ascending; the result shares the backing array.
func upTo(points []FieldPoint, evalDate time.Time) []FieldPoint {
	i := sort.Search(len(points), func(i int) bool {
		return points[i].Date.After(evalDate)
	})
	return points[:i]
}

// asOf returns the most recent point dated on or before the target date,
// scanning descending. Returns nil when no point qualifies.
func asOf(points []FieldPoint, date time.Time) *FieldPoint {
	for i := len(points) - 1; i >= 0; i-- {
		if !points[i].Date.After(date) {
			p := points[i]
			return &p
		}
	}
	return nil
}

// mergeEventDates returns the sorted union of the dates of all point
// slices, deduplicated. These are the reconciliation events at which a
// synthesized series can change value.
func mergeEventDates(series ...[]FieldPoint) []time.Time {
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, points := range series {
		for _, p := range points {
			if _, ok := seen[p.Date]; ok {
				continue
			}
			seen[p.Date] = struct{}{}
			dates = append(dates, p.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
