package engine

import (
	"context"
	"sort"
	"time"

	"github.com/seenimoa/fundline/internal/store"
	"github.com/seenimoa/fundline/pkg/models"
)

// SharesResolver reconstructs shares-outstanding history for a ticker.
// Quarterly diluted average shares from income statements are the primary
// source; quarterly balance-sheet issued-share counts fill the dates the
// income statements miss; annual income statements provide the long tail.
// Zero counts are disclosure artifacts and are discarded everywhere.
type SharesResolver struct {
	statements store.StatementReader
}

// NewSharesResolver creates a resolver over the given statement reader.
func NewSharesResolver(statements store.StatementReader) *SharesResolver {
	return &SharesResolver{statements: statements}
}

// QuarterlySeries returns the quarterly shares history in [start, end],
// sorted ascending. Diluted average shares win on any date where both
// sources disclose; balance-sheet issued shares are merged in only for
// dates the income statements do not cover.
func (r *SharesResolver) QuarterlySeries(ctx context.Context, ticker string, start, end time.Time) ([]models.SharesPoint, error) {
	primary, err := r.extract(ctx, ticker, models.ItemIncomeStatement, models.CoverageQuarter, keyDilutedShares, models.SharesQuarterlyPrimary, start, end)
	if err != nil {
		return nil, err
	}
	fallback, err := r.extract(ctx, ticker, models.ItemBalanceSheet, models.CoverageQuarter, keySharesIssued, models.SharesQuarterlyFallback, start, end)
	if err != nil {
		return nil, err
	}
	return mergeShares(primary, fallback), nil
}

// AnnualSeries returns the annual diluted-average-shares history in
// [start, end], sorted ascending.
func (r *SharesResolver) AnnualSeries(ctx context.Context, ticker string, start, end time.Time) ([]models.SharesPoint, error) {
	return r.extract(ctx, ticker, models.ItemIncomeStatement, models.CoverageAnnual, keyDilutedShares, models.SharesAnnual, start, end)
}

// CombinedSeries is the quarterly series extended with annual points on
// dates the quarterly history does not cover.
func (r *SharesResolver) CombinedSeries(ctx context.Context, ticker string, start, end time.Time) ([]models.SharesPoint, error) {
	quarterly, err := r.QuarterlySeries(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}
	annual, err := r.AnnualSeries(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}
	return mergeShares(quarterly, annual), nil
}

// AsOf returns the most recent resolved shares count dated on or before
// the given date, or nil when no history qualifies.
func (r *SharesResolver) AsOf(ctx context.Context, ticker string, date time.Time) (*models.SharesPoint, error) {
	points, err := r.CombinedSeries(ctx, ticker, time.Time{}, date)
	if err != nil {
		return nil, err
	}
	for i := len(points) - 1; i >= 0; i-- {
		if !points[i].Date.After(date) {
			p := points[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (r *SharesResolver) extract(ctx context.Context, ticker string, itemType models.ItemType, coverage models.Coverage, keys []string, source models.SharesSource, start, end time.Time) ([]models.SharesPoint, error) {
	items, err := r.statements.Statements(ctx, ticker, itemType, coverage, start, end)
	if err != nil {
		return nil, err
	}
	points := make([]models.SharesPoint, 0, len(items))
	for _, item := range items {
		v := item.Payload.Value(keys...)
		if v == nil || *v == 0 {
			continue
		}
		points = append(points, models.SharesPoint{Date: item.KeyDate, Value: *v, Source: source})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

// mergeShares unions two sorted series, keeping the primary point on any
// date both disclose.
func mergeShares(primary, secondary []models.SharesPoint) []models.SharesPoint {
	if len(secondary) == 0 {
		return primary
	}
	covered := make(map[time.Time]struct{}, len(primary))
	for _, p := range primary {
		covered[p.Date] = struct{}{}
	}
	out := append([]models.SharesPoint(nil), primary...)
	for _, p := range secondary {
		if _, ok := covered[p.Date]; ok {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
