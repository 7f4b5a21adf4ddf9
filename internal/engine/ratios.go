package engine

import (
	"context"
	"time"

	"github.com/seenimoa/fundline/pkg/models"
)

// ratioFunc computes one daily ratio series for a prepared ticker context
// over an already normalized [start, end] range.
type ratioFunc func(ctx context.Context, tc *tickerContext, start, end time.Time) ([]models.SeriesPoint, error)

// RatioDef describes one catalogue entry.
type RatioDef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Percent     bool   `json:"percent"`

	compute ratioFunc
}

// marginTTM builds a percentage margin: a TTM flow field over TTM revenue.
func marginTTM(itemType models.ItemType, numKeys []string) ratioFunc {
	return func(ctx context.Context, tc *tickerContext, start, end time.Time) ([]models.SeriesPoint, error) {
		num, err := tc.ttmDaily(ctx, itemType, numKeys, start, end)
		if err != nil {
			return nil, err
		}
		revenue, err := tc.ttmDaily(ctx, models.ItemIncomeStatement, keyTotalRevenue, start, end)
		if err != nil {
			return nil, err
		}
		return combine(num, revenue, divPct), nil
	}
}

// balanceRatio builds a plain quotient of two point-in-time balance-sheet
// fields.
func balanceRatio(numKeys, denKeys []string) ratioFunc {
	return func(ctx context.Context, tc *tickerContext, start, end time.Time) ([]models.SeriesPoint, error) {
		num, err := tc.pointDaily(ctx, models.ItemBalanceSheet, numKeys, start, end)
		if err != nil {
			return nil, err
		}
		den, err := tc.pointDaily(ctx, models.ItemBalanceSheet, denKeys, start, end)
		if err != nil {
			return nil, err
		}
		return combine(num, den, div), nil
	}
}

// perShare builds a point-in-time balance-sheet field over resolved shares
// outstanding.
func perShare(numKeys []string) ratioFunc {
	return func(ctx context.Context, tc *tickerContext, start, end time.Time) ([]models.SeriesPoint, error) {
		num, err := tc.pointDaily(ctx, models.ItemBalanceSheet, numKeys, start, end)
		if err != nil {
			return nil, err
		}
		shares, err := tc.sharesDaily(ctx, start, end)
		if err != nil {
			return nil, err
		}
		return combine(num, shares, div), nil
	}
}

// evRatio builds enterprise value over a TTM flow field.
func evRatio(itemType models.ItemType, denKeys []string) ratioFunc {
	return func(ctx context.Context, tc *tickerContext, start, end time.Time) ([]models.SeriesPoint, error) {
		ev, err := tc.enterpriseValueDaily(ctx, start, end)
		if err != nil {
			return nil, err
		}
		den, err := tc.ttmDaily(ctx, itemType, denKeys, start, end)
		if err != nil {
			return nil, err
		}
		return combine(ev, den, div), nil
	}
}

func epsTTM(ctx context.Context, tc *tickerContext, start, end time.Time) ([]models.SeriesPoint, error) {
	income, err := tc.ttmDaily(ctx, models.ItemIncomeStatement, keyNetIncome, start, end)
	if err != nil {
		return nil, err
	}
	shares, err := tc.sharesDaily(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return combine(income, shares, div), nil
}

// assetTurnoverTTM relates TTM net income to the most recently disclosed
// total assets.
func assetTurnoverTTM(ctx context.Context, tc *tickerContext, start, end time.Time) ([]models.SeriesPoint, error) {
	income, err := tc.ttmDaily(ctx, models.ItemIncomeStatement, keyNetIncome, start, end)
	if err != nil {
		return nil, err
	}
	assets, err := tc.pointDaily(ctx, models.ItemBalanceSheet, keyTotalAssets, start, end)
	if err != nil {
		return nil, err
	}
	return combine(income, assets, div), nil
}

// interestToIncomeTTM is TTM interest expense over TTM EBIT (operating
// income when EBIT is not disclosed). Computed only while EBIT is strictly
// positive; a sign-flipped coverage ratio over losses would mislead.
func interestToIncomeTTM(ctx context.Context, tc *tickerContext, start, end time.Time) ([]models.SeriesPoint, error) {
	interest, err := tc.ttmDaily(ctx, models.ItemIncomeStatement, keyInterestExpense, start, end)
	if err != nil {
		return nil, err
	}
	ebit, err := tc.ttmDaily(ctx, models.ItemIncomeStatement, append(keyEBIT, keyOperatingIncome...), start, end)
	if err != nil {
		return nil, err
	}
	return combine(interest, ebit, divPositive), nil
}

func priceToSalesTTM(ctx context.Context, tc *tickerContext, start, end time.Time) ([]models.SeriesPoint, error) {
	marketCap, err := tc.marketCapDaily(ctx, start, end)
	if err != nil {
		return nil, err
	}
	revenue, err := tc.ttmDaily(ctx, models.ItemIncomeStatement, keyTotalRevenue, start, end)
	if err != nil {
		return nil, err
	}
	return combine(marketCap, revenue, div), nil
}

func priceToBook(ctx context.Context, tc *tickerContext, start, end time.Time) ([]models.SeriesPoint, error) {
	marketCap, err := tc.marketCapDaily(ctx, start, end)
	if err != nil {
		return nil, err
	}
	equity, err := tc.pointDaily(ctx, models.ItemBalanceSheet, keyEquity, start, end)
	if err != nil {
		return nil, err
	}
	return combine(marketCap, equity, div), nil
}

// --- Catalogue ---

var ratioCatalogue = []RatioDef{
	{
		Name:        "GROSS_MARGIN_TTM",
		Description: "Trailing-twelve-month gross profit as a percentage of revenue",
		Percent:     true,
		compute:     marginTTM(models.ItemIncomeStatement, keyGrossProfit),
	},
	{
		Name:        "OPERATING_MARGIN_TTM",
		Description: "Trailing-twelve-month operating income as a percentage of revenue",
		Percent:     true,
		compute:     marginTTM(models.ItemIncomeStatement, keyOperatingIncome),
	},
	{
		Name:        "NET_MARGIN_TTM",
		Description: "Trailing-twelve-month net income as a percentage of revenue",
		Percent:     true,
		compute:     marginTTM(models.ItemIncomeStatement, keyNetIncome),
	},
	{
		Name:        "FCF_MARGIN_TTM",
		Description: "Trailing-twelve-month free cash flow as a percentage of revenue",
		Percent:     true,
		compute:     marginTTM(models.ItemCashFlowStatement, keyFreeCashFlow),
	},
	{
		Name:        "DEBT_TO_EQUITY",
		Description: "Total debt over stockholders equity",
		compute:     balanceRatio(keyTotalDebt, keyEquity),
	},
	{
		Name:        "LIABILITIES_TO_EQUITY",
		Description: "Total liabilities over stockholders equity",
		compute:     balanceRatio(keyLiabilities, keyEquity),
	},
	{
		Name:        "LIABILITIES_TO_ASSETS",
		Description: "Total liabilities over total assets",
		compute:     balanceRatio(keyLiabilities, keyTotalAssets),
	},
	{
		Name:        "DEBT_TO_ASSETS",
		Description: "Total debt over total assets",
		compute:     balanceRatio(keyTotalDebt, keyTotalAssets),
	},
	{
		Name:        "ASSET_TURNOVER_TTM",
		Description: "Trailing-twelve-month net income over latest total assets",
		compute:     assetTurnoverTTM,
	},
	{
		Name:        "INTEREST_TO_INCOME_TTM",
		Description: "Trailing-twelve-month interest expense over EBIT",
		compute:     interestToIncomeTTM,
	},
	{
		Name:        "EPS_TTM",
		Description: "Trailing-twelve-month net income per resolved share",
		compute:     epsTTM,
	},
	{
		Name:        "CASH_PER_SHARE",
		Description: "Cash and equivalents per resolved share",
		compute:     perShare(keyCash),
	},
	{
		Name:        "CASH_AND_ST_INVESTMENTS_PER_SHARE",
		Description: "Cash, equivalents and short-term investments per resolved share",
		compute:     perShare(keyCashAndSTI),
	},
	{
		Name:        "BOOK_VALUE_PER_SHARE",
		Description: "Stockholders equity per resolved share",
		compute:     perShare(keyEquity),
	},
	{
		Name:        "PRICE_TO_SALES_TTM",
		Description: "Market capitalization over trailing-twelve-month revenue",
		compute:     priceToSalesTTM,
	},
	{
		Name:        "PRICE_TO_BOOK",
		Description: "Market capitalization over stockholders equity",
		compute:     priceToBook,
	},
	{
		Name:        "EV_TO_SALES_TTM",
		Description: "Enterprise value over trailing-twelve-month revenue",
		compute:     evRatio(models.ItemIncomeStatement, keyTotalRevenue),
	},
	{
		Name:        "EV_TO_FCF_TTM",
		Description: "Enterprise value over trailing-twelve-month free cash flow",
		compute:     evRatio(models.ItemCashFlowStatement, keyFreeCashFlow),
	},
	{
		Name:        "EV_TO_EBITDA_TTM",
		Description: "Enterprise value over trailing-twelve-month EBITDA",
		compute:     evRatio(models.ItemIncomeStatement, keyEBITDA),
	},
}
