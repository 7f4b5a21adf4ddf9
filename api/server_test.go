package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/seenimoa/fundline/internal/config"
	"github.com/seenimoa/fundline/internal/engine"
	"github.com/seenimoa/fundline/internal/fx"
	"github.com/seenimoa/fundline/internal/store"
	"github.com/seenimoa/fundline/pkg/models"
)

type unitQuote struct{}

func (unitQuote) Quote(_ context.Context, _, _ string) (float64, error) { return 1, nil }

func testServer(t *testing.T) *Server {
	t.Helper()

	mem := store.NewMemory()
	quarters := []struct {
		date    time.Time
		revenue float64
		gross   float64
	}{
		{time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), 290, 119},
		{time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), 300, 120},
		{time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC), 310, 120},
		{time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), 300, 119},
	}
	for _, q := range quarters {
		mem.AddStatement(models.StatementItem{
			Ticker:   "ACME",
			ItemType: models.ItemIncomeStatement,
			Coverage: models.CoverageQuarter,
			KeyDate:  q.date,
			Payload: models.Payload{
				"Total Revenue": models.Float(q.revenue),
				"Gross Profit":  models.Float(q.gross),
			},
		})
	}

	eng := engine.New(mem, fx.NewResolver(unitQuote{}))
	cfg := &config.Config{}
	cfg.Engine.ConcurrentTickers = 2

	return NewServer(cfg, eng, "test")
}

func doRequest(t *testing.T, srv *Server, path string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return rec, resp
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec, resp := doRequest(t, srv, path)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
		if !resp.Success {
			t.Errorf("%s: expected success", path)
		}
	}
}

func TestFundamentalSeriesEndpoint(t *testing.T) {
	srv := testServer(t)

	rec, resp := doRequest(t, srv,
		"/api/v1/timeseries/fundamental?tickers=ACME&ratio=GROSS_MARGIN_TTM&start=2025-01-01&end=2025-01-05")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, resp.Error)
	}

	series, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected data shape: %T", resp.Data)
	}
	points, ok := series["ACME"].([]interface{})
	if !ok {
		t.Fatalf("expected a series for ACME, got %v", series)
	}
	if len(points) != 5 {
		t.Errorf("expected 5 daily points, got %d", len(points))
	}
}

func TestFundamentalSeriesUnknownRatio(t *testing.T) {
	srv := testServer(t)

	rec, resp := doRequest(t, srv, "/api/v1/timeseries/fundamental?tickers=ACME&ratio=NOPE")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if resp.Success || resp.Error == "" {
		t.Error("expected an error response")
	}
}

func TestFundamentalSeriesMissingTickers(t *testing.T) {
	srv := testServer(t)

	rec, _ := doRequest(t, srv, "/api/v1/timeseries/fundamental?ratio=GROSS_MARGIN_TTM")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestFieldSeriesEndpoint(t *testing.T) {
	srv := testServer(t)

	rec, resp := doRequest(t, srv,
		"/api/v1/timeseries/field?tickers=acme&field=INCOME_STATEMENT:QUARTER:totalRevenue&start=2024-01-01&end=2024-12-31")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, resp.Error)
	}

	series, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected data shape: %T", resp.Data)
	}
	points, ok := series["ACME"].([]interface{})
	if !ok {
		t.Fatalf("expected a series for ACME, got %v", series)
	}
	if len(points) != 4 {
		t.Errorf("expected 4 disclosure points, got %d", len(points))
	}
}

func TestFieldSeriesBadDate(t *testing.T) {
	srv := testServer(t)

	rec, _ := doRequest(t, srv,
		"/api/v1/timeseries/field?tickers=ACME&field=INCOME_STATEMENT:QUARTER:totalRevenue&start=31-01-2025")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed date, got %d", rec.Code)
	}
}

func TestCatalogueEndpoint(t *testing.T) {
	srv := testServer(t)

	rec, resp := doRequest(t, srv, "/api/v1/fundamentals")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	defs, ok := resp.Data.([]interface{})
	if !ok {
		t.Fatalf("unexpected data shape: %T", resp.Data)
	}
	if len(defs) != len(engine.Catalogue()) {
		t.Errorf("expected %d catalogue entries, got %d", len(engine.Catalogue()), len(defs))
	}
}

func TestSharesEndpointEmpty(t *testing.T) {
	srv := testServer(t)

	rec, resp := doRequest(t, srv, "/api/v1/shares/ACME")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !resp.Success {
		t.Error("expected success for a ticker with no shares history")
	}
}
