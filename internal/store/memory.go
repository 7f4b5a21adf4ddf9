package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/seenimoa/fundline/pkg/models"
	"github.com/seenimoa/fundline/pkg/timeutil"
)

// Memory is an in-memory Store used by engine and API tests. It applies
// the same uniqueness and supersede rules as the Postgres implementation.
type Memory struct {
	mu         sync.RWMutex
	statements []models.StatementItem
	prices     map[string][]models.PricePoint
	profiles   map[string]models.TickerProfile
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		prices:   make(map[string][]models.PricePoint),
		profiles: make(map[string]models.TickerProfile),
	}
}

// AddStatement stores a statement item, superseding older TTM/CUMULATIVE
// rows for the same triple and replacing exact (type, coverage, date)
// duplicates.
func (m *Memory) AddStatement(item models.StatementItem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item.Ticker = strings.ToUpper(item.Ticker)
	item.KeyDate = timeutil.Midnight(item.KeyDate)

	kept := m.statements[:0]
	for _, existing := range m.statements {
		sameTriple := existing.Ticker == item.Ticker &&
			existing.ItemType == item.ItemType &&
			existing.Coverage == item.Coverage
		if sameTriple && item.Coverage.Supersedes() {
			continue
		}
		if sameTriple && existing.KeyDate.Equal(item.KeyDate) {
			continue
		}
		kept = append(kept, existing)
	}
	m.statements = append(kept, item)
}

// AddPrice stores one daily price bar.
func (m *Memory) AddPrice(pt models.PricePoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticker := strings.ToUpper(pt.Ticker)
	pt.Date = timeutil.Midnight(pt.Date)
	m.prices[ticker] = append(m.prices[ticker], pt)
	sort.Slice(m.prices[ticker], func(i, j int) bool {
		return m.prices[ticker][i].Date.Before(m.prices[ticker][j].Date)
	})
}

// AddProfile stores ticker reference data.
func (m *Memory) AddProfile(p models.TickerProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[strings.ToUpper(p.Ticker)] = p
}

// Statements implements StatementReader.
func (m *Memory) Statements(_ context.Context, ticker string, itemType models.ItemType, coverage models.Coverage, start, end time.Time) ([]models.StatementItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ticker = strings.ToUpper(ticker)
	var out []models.StatementItem
	for _, item := range m.statements {
		if item.Ticker != ticker || item.ItemType != itemType || item.Coverage != coverage {
			continue
		}
		if !start.IsZero() && item.KeyDate.Before(timeutil.Midnight(start)) {
			continue
		}
		if !end.IsZero() && item.KeyDate.After(timeutil.Midnight(end)) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].KeyDate.Before(out[j].KeyDate) })
	return out, nil
}

// Prices implements PriceReader.
func (m *Memory) Prices(_ context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.PricePoint
	for _, pt := range m.prices[strings.ToUpper(ticker)] {
		if !start.IsZero() && pt.Date.Before(timeutil.Midnight(start)) {
			continue
		}
		if !end.IsZero() && pt.Date.After(timeutil.Midnight(end)) {
			continue
		}
		out = append(out, pt)
	}
	return out, nil
}

// Profile implements ProfileReader.
func (m *Memory) Profile(_ context.Context, ticker string) (*models.TickerProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[strings.ToUpper(ticker)]
	if !ok {
		return nil, &ErrProfileNotFound{Ticker: strings.ToUpper(ticker)}
	}
	return &p, nil
}
