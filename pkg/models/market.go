package models

import "time"

// TickerProfile holds descriptive and market reference data for one ticker.
// TradeCurrency is the currency prices are quoted in; FinancialCurrency is
// the currency statement figures are reported in. When they differ,
// statement values are converted before ratio math.
type TickerProfile struct {
	Ticker            string `json:"ticker"`
	Name              string `json:"name,omitempty"`
	Exchange          string `json:"exchange,omitempty"`
	TradeCurrency     string `json:"trade_currency"`
	FinancialCurrency string `json:"financial_currency"`
}

// PricePoint is one daily OHLCV bar.
type PricePoint struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// SharesSource identifies which disclosure a shares-outstanding figure
// came from.
type SharesSource string

const (
	SharesQuarterlyPrimary  SharesSource = "quarterly-primary"
	SharesQuarterlyFallback SharesSource = "quarterly-fallback"
	SharesAnnual            SharesSource = "annual"
)

// SharesPoint is a derived shares-outstanding observation. It is produced
// by the shares resolver from statement payloads and never persisted.
type SharesPoint struct {
	Date   time.Time    `json:"date"`
	Value  float64      `json:"value"`
	Source SharesSource `json:"source"`
}

// SeriesPoint is one entry of an output time series. A nil value means no
// qualifying data existed on that date.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value *float64  `json:"value"`
}

// Float returns a pointer to v. Convenience for building series literals.
func Float(v float64) *float64 { return &v }
