// Package store provides read access to the persistence collaborators the
// ratio engine consumes: statement items, daily prices and ticker
// profiles. The engine never mutates stored data; the single write hook
// (SaveStatement) exists for the ingestion collaborator and implements the
// supersede-in-place rule for TTM/CUMULATIVE coverages.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/fundline/pkg/models"
)

// StatementReader reads disclosed statement items. A zero start time means
// "from the beginning of history"; callers synthesizing TTM values need
// disclosures well before the requested chart range.
type StatementReader interface {
	Statements(ctx context.Context, ticker string, itemType models.ItemType, coverage models.Coverage, start, end time.Time) ([]models.StatementItem, error)
}

// PriceReader reads daily OHLCV bars for a ticker, ascending by date.
type PriceReader interface {
	Prices(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error)
}

// ProfileReader reads ticker reference data.
type ProfileReader interface {
	Profile(ctx context.Context, ticker string) (*models.TickerProfile, error)
}

// Store is the full read surface the engine consumes.
type Store interface {
	StatementReader
	PriceReader
	ProfileReader
}

// ErrProfileNotFound is returned when no profile exists for a ticker.
type ErrProfileNotFound struct {
	Ticker string
}

func (e *ErrProfileNotFound) Error() string {
	return fmt.Sprintf("no profile for ticker %q", e.Ticker)
}
