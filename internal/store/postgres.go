package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/seenimoa/fundline/pkg/models"
	"github.com/seenimoa/fundline/pkg/timeutil"
)

// Postgres is the pgx-backed store implementation. Statement payloads are
// stored as JSONB keyed by human-readable field name; key dates are stored
// as text because ingestion sources disagree on formats, and are parsed
// tolerantly on read.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect opens a pgx pool against the configured database URL.
func Connect(ctx context.Context, dbURL string, maxConns int32) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Statements returns statement items for (ticker, itemType, coverage)
// ordered ascending by key date. Rows with unparseable key dates are
// logged and skipped rather than failing the query.
func (p *Postgres) Statements(ctx context.Context, ticker string, itemType models.ItemType, coverage models.Coverage, start, end time.Time) ([]models.StatementItem, error) {
	sql := `SELECT ticker, item_type, coverage, key_date, payload
		FROM statement_items
		WHERE upper(ticker) = upper($1) AND item_type = $2 AND coverage = $3
		ORDER BY key_date`

	rows, err := p.pool.Query(ctx, sql, ticker, string(itemType), string(coverage))
	if err != nil {
		return nil, fmt.Errorf("query statements %s/%s/%s: %w", ticker, itemType, coverage, err)
	}
	defer rows.Close()

	var items []models.StatementItem
	for rows.Next() {
		var (
			item       models.StatementItem
			rawDate    string
			rawPayload []byte
		)
		if err := rows.Scan(&item.Ticker, &item.ItemType, &item.Coverage, &rawDate, &rawPayload); err != nil {
			return nil, fmt.Errorf("scan statement row: %w", err)
		}
		keyDate, err := timeutil.ParseFlexible(rawDate)
		if err != nil {
			log.Warn().Str("ticker", ticker).Str("key_date", rawDate).
				Msg("skipping statement with unparseable key date")
			continue
		}
		item.KeyDate = keyDate
		if len(rawPayload) > 0 {
			if err := json.Unmarshal(rawPayload, &item.Payload); err != nil {
				log.Warn().Err(err).Str("ticker", ticker).Str("key_date", rawDate).
					Msg("skipping statement with malformed payload")
				continue
			}
		}
		if !start.IsZero() && item.KeyDate.Before(timeutil.Midnight(start)) {
			continue
		}
		if !end.IsZero() && item.KeyDate.After(timeutil.Midnight(end)) {
			continue
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read statements %s: %w", ticker, err)
	}
	return items, nil
}

// Prices returns daily OHLCV bars for a ticker in [start, end], ascending.
func (p *Postgres) Prices(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	sql := `SELECT ticker, event_date, open, high, low, close, volume
		FROM eod_prices
		WHERE upper(ticker) = upper($1) AND event_date >= $2 AND event_date <= $3
		ORDER BY event_date`

	rows, err := p.pool.Query(ctx, sql, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("query prices %s: %w", ticker, err)
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var pt models.PricePoint
		if err := rows.Scan(&pt.Ticker, &pt.Date, &pt.Open, &pt.High, &pt.Low, &pt.Close, &pt.Volume); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		pt.Date = timeutil.Midnight(pt.Date)
		points = append(points, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read prices %s: %w", ticker, err)
	}
	return points, nil
}

// Profile returns reference data for a ticker.
func (p *Postgres) Profile(ctx context.Context, ticker string) (*models.TickerProfile, error) {
	sql := `SELECT ticker, name, exchange, trade_currency, financial_currency
		FROM ticker_profiles WHERE upper(ticker) = upper($1)`

	var prof models.TickerProfile
	err := p.pool.QueryRow(ctx, sql, ticker).Scan(
		&prof.Ticker, &prof.Name, &prof.Exchange, &prof.TradeCurrency, &prof.FinancialCurrency)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ErrProfileNotFound{Ticker: strings.ToUpper(ticker)}
	}
	if err != nil {
		return nil, fmt.Errorf("query profile %s: %w", ticker, err)
	}
	return &prof, nil
}

// SaveStatement upserts a statement item on behalf of the ingestion
// collaborator. For supersede coverages (TTM, CUMULATIVE) any older row for
// the same (ticker, item type, coverage) is removed first, so at most one
// row survives per triple.
func (p *Postgres) SaveStatement(ctx context.Context, item models.StatementItem) error {
	payload, err := json.Marshal(item.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save statement: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if item.Coverage.Supersedes() {
		_, err = tx.Exec(ctx, `DELETE FROM statement_items
			WHERE upper(ticker) = upper($1) AND item_type = $2 AND coverage = $3`,
			item.Ticker, string(item.ItemType), string(item.Coverage))
		if err != nil {
			return fmt.Errorf("supersede older %s/%s rows: %w", item.ItemType, item.Coverage, err)
		}
	}

	_, err = tx.Exec(ctx, `INSERT INTO statement_items
		(ticker, item_type, coverage, key_date, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (ticker, item_type, coverage, key_date)
		DO UPDATE SET payload = EXCLUDED.payload`,
		strings.ToUpper(item.Ticker), string(item.ItemType), string(item.Coverage),
		timeutil.FormatDate(item.KeyDate), payload)
	if err != nil {
		return fmt.Errorf("insert statement: %w", err)
	}

	return tx.Commit(ctx)
}
