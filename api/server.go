// Package api provides the HTTP REST API for the fundline engine.
//
// It exposes endpoints for raw statement-field time series, materialized
// fundamental ratio series, shares-outstanding history and the ratio
// catalogue.
package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/seenimoa/fundline/internal/config"
	"github.com/seenimoa/fundline/internal/engine"
	"github.com/seenimoa/fundline/pkg/timeutil"
)

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	service *engine.Service
	shares  *engine.SharesResolver
	version string
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, eng *engine.Engine, version string) *Server {
	srv := &Server{
		cfg:     cfg,
		service: engine.NewService(eng, cfg.Engine.ConcurrentTickers),
		shares:  eng.Shares(),
		version: version,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", addr).Msg("API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	<-done
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Time series
		r.Get("/timeseries/field", s.handleFieldSeries)
		r.Get("/timeseries/fundamental", s.handleFundamentalSeries)

		// Shares history
		r.Get("/shares/{ticker}", s.handleShares)

		// Ratio catalogue
		r.Get("/fundamentals", s.handleCatalogue)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"version": s.version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleFieldSeries(w http.ResponseWriter, r *http.Request) {
	tickers, ok := queryTickers(w, r)
	if !ok {
		return
	}
	field := r.URL.Query().Get("field")
	if field == "" {
		writeError(w, http.StatusBadRequest, "field is required")
		return
	}
	start, end, err := queryRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	series, err := s.service.FieldSeries(ctx, tickers, field, start, end)
	if err != nil {
		writeError(w, seriesErrorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    series,
	})
}

func (s *Server) handleFundamentalSeries(w http.ResponseWriter, r *http.Request) {
	tickers, ok := queryTickers(w, r)
	if !ok {
		return
	}
	ratio := r.URL.Query().Get("ratio")
	if ratio == "" {
		ratio = r.URL.Query().Get("name")
	}
	if ratio == "" {
		writeError(w, http.StatusBadRequest, "ratio is required")
		return
	}
	start, end, err := queryRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	series, err := s.service.FundamentalSeries(ctx, tickers, ratio, start, end)
	if err != nil {
		writeError(w, seriesErrorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    series,
	})
}

func (s *Server) handleShares(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	start, end, err := queryRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	points, err := s.shares.CombinedSeries(ctx, strings.ToUpper(ticker), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    points,
	})
}

func (s *Server) handleCatalogue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    engine.Catalogue(),
	})
}

// ============================================================
// Helpers
// ============================================================

// queryTickers parses the required comma-separated tickers parameter,
// writing the error response itself when missing.
func queryTickers(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	raw := r.URL.Query().Get("tickers")
	if raw == "" {
		raw = r.URL.Query().Get("ticker")
	}
	var tickers []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			tickers = append(tickers, t)
		}
	}
	if len(tickers) == 0 {
		writeError(w, http.StatusBadRequest, "tickers is required")
		return nil, false
	}
	return tickers, true
}

// queryRange parses optional start and end parameters (YYYY-MM-DD). Zero
// times mean "not given".
func queryRange(r *http.Request) (start, end time.Time, err error) {
	if v := r.URL.Query().Get("start"); v != "" {
		if start, err = timeutil.ParseDate(v); err != nil {
			return start, end, err
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if end, err = timeutil.ParseDate(v); err != nil {
			return start, end, err
		}
	}
	return start, end, nil
}

// seriesErrorStatus maps service errors to HTTP statuses: malformed field
// or unknown ratio names are the caller's fault, everything else is ours.
func seriesErrorStatus(err error) int {
	msg := err.Error()
	if strings.HasPrefix(msg, "unknown ratio") || strings.HasPrefix(msg, "field ") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
