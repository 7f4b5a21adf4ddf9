// Package models defines the shared data model for the fundline engine:
// financial statement snapshots, market reference data, price history and
// the series types produced by the ratio engine.
package models

import (
	"strings"
	"time"
	"unicode"
)

// ItemType identifies the kind of disclosed data a statement item carries.
type ItemType string

const (
	ItemBalanceSheet        ItemType = "BALANCE_SHEET"
	ItemIncomeStatement     ItemType = "INCOME_STATEMENT"
	ItemCashFlowStatement   ItemType = "CASH_FLOW_STATEMENT"
	ItemAnalystPriceTargets ItemType = "ANALYST_PRICE_TARGETS"
	ItemForecastSummary     ItemType = "FORECAST_SUMMARY"
	ItemDividendHistory     ItemType = "DIVIDEND_HISTORY"
	ItemEarningsEstimates   ItemType = "EARNINGS_ESTIMATE_HISTORY"
)

// IsStatement reports whether the item type is one of the three core
// financial statements. Only these carry currency-denominated payloads by
// default; analyst targets and other snapshots are excluded from conversion
// unless explicitly enabled.
func (t ItemType) IsStatement() bool {
	switch t {
	case ItemBalanceSheet, ItemIncomeStatement, ItemCashFlowStatement:
		return true
	}
	return false
}

// Valid reports whether the item type is one of the known kinds.
func (t ItemType) Valid() bool {
	switch t {
	case ItemBalanceSheet, ItemIncomeStatement, ItemCashFlowStatement,
		ItemAnalystPriceTargets, ItemForecastSummary,
		ItemDividendHistory, ItemEarningsEstimates:
		return true
	}
	return false
}

// Coverage is the reporting period type of a statement item.
type Coverage string

const (
	CoverageAnnual             Coverage = "FYEAR"
	CoverageQuarter            Coverage = "QUARTER"
	CoverageTTM                Coverage = "TTM"
	CoverageCumulative         Coverage = "CUMULATIVE"
	CoverageCumulativeSnapshot Coverage = "CUMULATIVE_SNAPSHOT"
)

// Valid reports whether the coverage is one of the known period types.
func (c Coverage) Valid() bool {
	switch c {
	case CoverageAnnual, CoverageQuarter, CoverageTTM,
		CoverageCumulative, CoverageCumulativeSnapshot:
		return true
	}
	return false
}

// Supersedes reports whether the coverage follows supersede-in-place
// semantics: a new disclosure with a later key date replaces any older row
// for the same (ticker, item type, coverage) triple.
func (c Coverage) Supersedes() bool {
	return c == CoverageTTM || c == CoverageCumulative
}

// Payload is a dynamically shaped statement body: human-readable field name
// to numeric value. Field names are free-form strings discovered at
// ingestion time, so there is no fixed schema. A nil value means the field
// was disclosed but empty.
type Payload map[string]*float64

// Value returns the first non-nil value among the candidate field names,
// evaluated in order. It models the best-effort key fallbacks used
// throughout the ratio library ("Net Income" → "NetIncome" and similar).
func (p Payload) Value(keys ...string) *float64 {
	for _, k := range keys {
		if v, ok := p[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// Clone returns a deep copy of the payload. Conversion operates on clones
// so stored records are never mutated.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		if v == nil {
			out[k] = nil
			continue
		}
		f := *v
		out[k] = &f
	}
	return out
}

// HumanizeKey converts a machine-readable camelCase key to the spaced,
// title-cased form used as payload field names: "totalRevenue" becomes
// "Total Revenue". Keys that already contain spaces are returned unchanged.
func HumanizeKey(key string) string {
	if strings.ContainsRune(key, ' ') {
		return key
	}
	var b strings.Builder
	b.Grow(len(key) + 4)
	runes := []rune(key)
	for i, r := range runes {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) && !unicode.IsUpper(runes[i-1]) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// StatementItem is one disclosed financial-statement snapshot. KeyDate is
// the date the figures apply to, not the fetch date. At most one item
// exists per (ticker, item type, coverage, key date); TTM and CUMULATIVE
// coverages keep at most one row per (ticker, item type, coverage).
type StatementItem struct {
	Ticker   string    `json:"ticker"`
	ItemType ItemType  `json:"item_type"`
	Coverage Coverage  `json:"coverage"`
	KeyDate  time.Time `json:"key_date"`
	Payload  Payload   `json:"payload"`
}
