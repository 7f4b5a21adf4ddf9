package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/fundline/pkg/models"
)

// DefaultConcurrency bounds how many tickers a multi-ticker request works
// on at once.
const DefaultConcurrency = 4

// Service answers multi-ticker series requests by fanning out over the
// engine, one ticker context per ticker.
type Service struct {
	eng         *Engine
	concurrency int
}

// NewService creates a series service. A non-positive concurrency falls
// back to DefaultConcurrency.
func NewService(eng *Engine, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Service{eng: eng, concurrency: concurrency}
}

// SeriesSet maps ticker to its computed series. Every requested ticker has
// an entry; a ticker with no qualifying data maps to an empty slice.
type SeriesSet map[string][]models.SeriesPoint

// FieldSeries returns the raw disclosed values of one statement field for
// each ticker: one point per disclosure date, currency-converted, with no
// carry-forward between dates. A zero range defaults to year-to-date, like
// FundamentalSeries.
func (s *Service) FieldSeries(ctx context.Context, tickers []string, field string, start, end time.Time) (SeriesSet, error) {
	ref, err := ParseFieldRef(field)
	if err != nil {
		return nil, err
	}
	start, end = normalizeRange(start, end)

	return s.fanOut(ctx, tickers, func(ctx context.Context, tc *tickerContext) ([]models.SeriesPoint, error) {
		points, err := tc.fieldPoints(ctx, ref.ItemType, ref.Coverage, ref.lookupKeys())
		if err != nil {
			return nil, err
		}
		out := make([]models.SeriesPoint, 0, len(points))
		for _, p := range points {
			if p.Date.Before(start) || p.Date.After(end) {
				continue
			}
			v := p.Value
			out = append(out, models.SeriesPoint{Date: p.Date, Value: &v})
		}
		return out, nil
	})
}

// FundamentalSeries returns the materialized daily series of one catalogue
// ratio for each ticker. A zero range defaults to year-to-date.
func (s *Service) FundamentalSeries(ctx context.Context, tickers []string, ratio string, start, end time.Time) (SeriesSet, error) {
	def, err := LookupRatio(ratio)
	if err != nil {
		return nil, err
	}
	start, end = normalizeRange(start, end)

	return s.fanOut(ctx, tickers, func(ctx context.Context, tc *tickerContext) ([]models.SeriesPoint, error) {
		return def.compute(ctx, tc, start, end)
	})
}

// fanOut runs compute per ticker with bounded concurrency. The first
// failure cancels the remaining work and propagates; tickers that computed
// nothing still get an empty entry so callers can tell "no data" from
// "not requested".
func (s *Service) fanOut(ctx context.Context, tickers []string, compute func(ctx context.Context, tc *tickerContext) ([]models.SeriesPoint, error)) (SeriesSet, error) {
	result := make(SeriesSet, len(tickers))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			points, err := compute(gctx, s.eng.newTickerContext(ticker))
			if err != nil {
				log.Error().Err(err).Str("ticker", ticker).Msg("series computation failed")
				return err
			}
			if points == nil {
				points = []models.SeriesPoint{}
			}
			mu.Lock()
			result[ticker] = points
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
