package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/seenimoa/fundline/internal/fx"
	"github.com/seenimoa/fundline/internal/store"
	"github.com/seenimoa/fundline/pkg/models"
	"github.com/seenimoa/fundline/pkg/timeutil"
)

// Statement payload field names, in the spaced human-readable form used at
// ingestion time. Multi-entry slices are ordered candidate lookups: the
// first disclosed non-nil key wins.
var (
	keyTotalRevenue    = []string{"Total Revenue"}
	keyGrossProfit     = []string{"Gross Profit"}
	keyOperatingIncome = []string{"Operating Income"}
	keyNetIncome       = []string{"Net Income", "NetIncome"}
	keyFreeCashFlow    = []string{"Free Cash Flow"}
	keyEBIT            = []string{"EBIT"}
	keyEBITDA          = []string{"EBITDA", "Normalized EBITDA"}
	keyInterestExpense = []string{"Interest Expense"}
	keyTotalAssets     = []string{"Total Assets"}
	keyLiabilities     = []string{"Total Liabilities Net Minority Interest", "Total Liab"}
	keyTotalDebt       = []string{"Total Debt"}
	keyEquity          = []string{"Stockholders Equity", "Common Stock Equity", "Total Stockholder Equity"}
	keyCash            = []string{"Cash And Cash Equivalents", "Cash"}
	keyCashAndSTI      = []string{"Cash Cash Equivalents And Short Term Investments", "Cash And Short Term Investments"}
	keyMinorityInt     = []string{"Minority Interest"}
	keyPreferredStock  = []string{"Preferred Stock"}
	keyDilutedShares   = []string{"Diluted Average Shares"}
	keySharesIssued    = []string{"Share Issued", "Ordinary Shares Number"}
)

// Engine computes synthetic fundamental series over the read-only store.
// It holds no per-request state; each computation builds a tickerContext.
type Engine struct {
	store  store.Store
	fx     *fx.Resolver
	shares *SharesResolver
}

// New creates an engine over the given store and FX resolver.
func New(st store.Store, fxResolver *fx.Resolver) *Engine {
	return &Engine{
		store:  st,
		fx:     fxResolver,
		shares: NewSharesResolver(st),
	}
}

// Shares exposes the shares resolver for callers that need raw
// shares-outstanding history.
func (e *Engine) Shares() *SharesResolver { return e.shares }

// tickerContext caches everything loaded for one ticker during one
// computation: profile, resolved FX rate, and statements per
// (item type, coverage). It is not safe for concurrent use; the series
// service builds one per ticker per request.
type tickerContext struct {
	eng    *Engine
	ticker string

	profile      *models.TickerProfile
	rateResolved bool
	rate         float64 // financial → trade; 0 means unresolved, conversion skipped

	statements map[string][]models.StatementItem
}

func (e *Engine) newTickerContext(ticker string) *tickerContext {
	return &tickerContext{
		eng:        e,
		ticker:     ticker,
		statements: make(map[string][]models.StatementItem),
	}
}

// conversionRate resolves the financial→trade currency rate once per
// context. A nil FX result leaves the rate at zero, which Convert treats
// as "skip conversion, use raw values".
func (tc *tickerContext) conversionRate(ctx context.Context) float64 {
	if tc.rateResolved {
		return tc.rate
	}
	tc.rateResolved = true

	if tc.profile == nil {
		profile, err := tc.eng.store.Profile(ctx, tc.ticker)
		if err != nil {
			log.Debug().Err(err).Str("ticker", tc.ticker).
				Msg("no ticker profile; statement values used unconverted")
			return 0
		}
		tc.profile = profile
	}

	from, to := tc.profile.FinancialCurrency, tc.profile.TradeCurrency
	if from == "" || to == "" || from == to {
		return 0
	}
	if rate := tc.eng.fx.Rate(ctx, from, to); rate != nil {
		tc.rate = *rate
	}
	return tc.rate
}

// load fetches (and converts) all statements of one (item type, coverage),
// caching the result for the lifetime of the context.
func (tc *tickerContext) load(ctx context.Context, itemType models.ItemType, coverage models.Coverage) ([]models.StatementItem, error) {
	cacheKey := string(itemType) + "/" + string(coverage)
	if items, ok := tc.statements[cacheKey]; ok {
		return items, nil
	}

	items, err := tc.eng.store.Statements(ctx, tc.ticker, itemType, coverage, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	if itemType.IsStatement() && len(items) > 0 {
		if rate := tc.conversionRate(ctx); rate > 0 {
			from, to := tc.profile.FinancialCurrency, tc.profile.TradeCurrency
			for i := range items {
				items[i].Payload = Convert(items[i].Payload, rate, from, to, itemType, ConvertOptions{})
			}
		}
	}

	tc.statements[cacheKey] = items
	return items, nil
}

// fieldPoints extracts one field from all statements of a coverage as a
// sorted point series. Statements that do not disclose the field (under
// any candidate key) are skipped.
func (tc *tickerContext) fieldPoints(ctx context.Context, itemType models.ItemType, coverage models.Coverage, keys []string) ([]FieldPoint, error) {
	items, err := tc.load(ctx, itemType, coverage)
	if err != nil {
		return nil, err
	}
	points := make([]FieldPoint, 0, len(items))
	for _, item := range items {
		if v := item.Payload.Value(keys...); v != nil {
			points = append(points, FieldPoint{Date: item.KeyDate, Value: *v})
		}
	}
	sortPoints(points)
	return points, nil
}

// ttmEvents builds the sparse reconciliation-event series of TTM values
// for a flow field: one event per disclosure date, valued by the 5-tier
// synthesis policy at that date.
func (tc *tickerContext) ttmEvents(ctx context.Context, itemType models.ItemType, keys []string) ([]models.SeriesPoint, error) {
	quarterly, err := tc.fieldPoints(ctx, itemType, models.CoverageQuarter, keys)
	if err != nil {
		return nil, err
	}
	annual, err := tc.fieldPoints(ctx, itemType, models.CoverageAnnual, keys)
	if err != nil {
		return nil, err
	}

	var events []models.SeriesPoint
	for _, date := range mergeEventDates(quarterly, annual) {
		events = append(events, models.SeriesPoint{
			Date:  date,
			Value: TrailingTwelveMonths(date, quarterly, annual),
		})
	}
	return events, nil
}

// pointEvents builds the sparse event series of point-in-time values for a
// stock field: at each disclosure date the most recent quarterly value
// wins, falling back to the most recent annual value.
func (tc *tickerContext) pointEvents(ctx context.Context, itemType models.ItemType, keys []string) ([]models.SeriesPoint, error) {
	quarterly, err := tc.fieldPoints(ctx, itemType, models.CoverageQuarter, keys)
	if err != nil {
		return nil, err
	}
	annual, err := tc.fieldPoints(ctx, itemType, models.CoverageAnnual, keys)
	if err != nil {
		return nil, err
	}

	var events []models.SeriesPoint
	for _, date := range mergeEventDates(quarterly, annual) {
		var value *float64
		if p := asOf(quarterly, date); p != nil {
			value = &p.Value
		} else if p := asOf(annual, date); p != nil {
			value = &p.Value
		}
		events = append(events, models.SeriesPoint{Date: date, Value: value})
	}
	return events, nil
}

// ttmDaily materializes a TTM flow field into a daily carry-forward series.
func (tc *tickerContext) ttmDaily(ctx context.Context, itemType models.ItemType, keys []string, start, end time.Time) ([]models.SeriesPoint, error) {
	events, err := tc.ttmEvents(ctx, itemType, keys)
	if err != nil {
		return nil, err
	}
	return Materialize(start, end, events), nil
}

// pointDaily materializes a point-in-time stock field into a daily series.
func (tc *tickerContext) pointDaily(ctx context.Context, itemType models.ItemType, keys []string, start, end time.Time) ([]models.SeriesPoint, error) {
	events, err := tc.pointEvents(ctx, itemType, keys)
	if err != nil {
		return nil, err
	}
	return Materialize(start, end, events), nil
}

// sharesDaily materializes resolved shares outstanding into a daily
// series, preferring quarterly history and extending with annual
// disclosures where quarterly history is exhausted.
func (tc *tickerContext) sharesDaily(ctx context.Context, start, end time.Time) ([]models.SeriesPoint, error) {
	points, err := tc.eng.shares.CombinedSeries(ctx, tc.ticker, time.Time{}, end)
	if err != nil {
		return nil, err
	}
	events := make([]models.SeriesPoint, 0, len(points))
	for _, p := range points {
		v := p.Value
		events = append(events, models.SeriesPoint{Date: p.Date, Value: &v})
	}
	return Materialize(start, end, events), nil
}

// priceDaily materializes daily close prices with carry-forward across
// non-trading days. The fetch window is widened one year back so the first
// requested days can inherit the last close before the range.
func (tc *tickerContext) priceDaily(ctx context.Context, start, end time.Time) ([]models.SeriesPoint, error) {
	bars, err := tc.eng.store.Prices(ctx, tc.ticker, start.AddDate(-1, 0, 0), end)
	if err != nil {
		return nil, err
	}
	events := make([]models.SeriesPoint, 0, len(bars))
	for _, bar := range bars {
		if bar.Close <= 0 {
			continue
		}
		c := bar.Close
		events = append(events, models.SeriesPoint{Date: bar.Date, Value: &c})
	}
	return Materialize(start, end, events), nil
}

// marketCapDaily is daily close price times resolved shares outstanding.
func (tc *tickerContext) marketCapDaily(ctx context.Context, start, end time.Time) ([]models.SeriesPoint, error) {
	price, err := tc.priceDaily(ctx, start, end)
	if err != nil {
		return nil, err
	}
	shares, err := tc.sharesDaily(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return combine(price, shares, func(p, s *float64) *float64 {
		if p == nil || s == nil || *s == 0 {
			return nil
		}
		v := *p * *s
		return &v
	}), nil
}

// enterpriseValueDaily is market cap plus total debt, minority interest
// and preferred stock, minus cash. Missing balance-sheet components
// contribute zero; a missing market cap makes the whole day nil.
func (tc *tickerContext) enterpriseValueDaily(ctx context.Context, start, end time.Time) ([]models.SeriesPoint, error) {
	marketCap, err := tc.marketCapDaily(ctx, start, end)
	if err != nil {
		return nil, err
	}
	debt, err := tc.pointDaily(ctx, models.ItemBalanceSheet, keyTotalDebt, start, end)
	if err != nil {
		return nil, err
	}
	minority, err := tc.pointDaily(ctx, models.ItemBalanceSheet, keyMinorityInt, start, end)
	if err != nil {
		return nil, err
	}
	preferred, err := tc.pointDaily(ctx, models.ItemBalanceSheet, keyPreferredStock, start, end)
	if err != nil {
		return nil, err
	}
	cash, err := tc.pointDaily(ctx, models.ItemBalanceSheet, keyCash, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]models.SeriesPoint, len(marketCap))
	for i := range marketCap {
		if marketCap[i].Value == nil {
			out[i] = models.SeriesPoint{Date: marketCap[i].Date}
			continue
		}
		ev := *marketCap[i].Value
		for _, add := range []*float64{debt[i].Value, minority[i].Value, preferred[i].Value} {
			if add != nil {
				ev += *add
			}
		}
		if cash[i].Value != nil {
			ev -= *cash[i].Value
		}
		out[i] = models.SeriesPoint{Date: marketCap[i].Date, Value: &ev}
	}
	return out, nil
}

// normalizeRange applies the default chart range: year-to-date through
// today.
func normalizeRange(start, end time.Time) (time.Time, time.Time) {
	now := timeutil.Today()
	if end.IsZero() {
		end = now
	} else {
		end = timeutil.Midnight(end)
	}
	if start.IsZero() {
		start = timeutil.YearStart(end)
	} else {
		start = timeutil.Midnight(start)
	}
	return start, end
}
