// Package web exposes the dashboard HTTP API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"watchdeck/service"
	"watchdeck/shared"
)

// ServerConfig represents the configuration struct for the web server.
type ServerConfig struct {
	// Listen is the server listen address.
	Listen string
	// Service is the dashboard service backing the api.
	Service *service.Service
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Validate asserts the config sane inputs.
func (cfg *ServerConfig) Validate() error {
	var errs error

	if cfg.Listen == "" {
		errs = errors.Join(errs, fmt.Errorf("listen address cannot be an empty string"))
	}
	if cfg.Service == nil {
		errs = errors.Join(errs, fmt.Errorf("service cannot be nil"))
	}
	if cfg.Cancel == nil {
		errs = errors.Join(errs, fmt.Errorf("context cancellation function cannot be nil"))
	}

	return errs
}

// Server represents the dashboard web server.
type Server struct {
	cfg    *ServerConfig
	srv    *http.Server
	logger *zerolog.Logger
}

// NewServer initializes a new dashboard web server.
func NewServer(cfg *ServerConfig) (*Server, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	logger := log.With().Str("component", "web").Logger()

	server := &Server{
		cfg:    cfg,
		logger: &logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/market-status", server.handleMarketStatus)
	mux.HandleFunc("/api/quotes", server.handleQuotes)
	mux.HandleFunc("/api/quote", server.handleQuote)
	mux.HandleFunc("/api/history", server.handleHistory)
	mux.HandleFunc("/api/analytics", server.handleAnalytics)
	mux.HandleFunc("/api/projection", server.handleProjection)
	mux.HandleFunc("/api/search", server.handleSearch)
	mux.HandleFunc("/api/watchlist", server.handleWatchlist)

	server.srv = &http.Server{
		Addr:         cfg.Listen,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 120,
	}

	return server, nil
}

// corsMiddleware adds CORS headers for browser clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON serializes the provided payload to the response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		s.logger.Error().Msgf("encoding response: %v", err)
	}
}

// writeError serializes an error message to the response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// handleMarketStatus serves the market session status.
func (s *Server) handleMarketStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.writeJSON(w, http.StatusOK, s.cfg.Service.MarketStatus())
}

// quotesResponse represents the watchlist quote snapshot payload. NoData
// distinguishes an empty snapshot from one that has not refreshed yet.
type quotesResponse struct {
	Quotes       []*shared.Quote     `json:"quotes"`
	NoData       bool                `json:"noData"`
	MarketStatus shared.MarketStatus `json:"marketStatus"`
}

// handleQuotes serves the last published watchlist snapshot.
func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	quotes := s.cfg.Service.Quotes()
	if quotes == nil {
		quotes = []*shared.Quote{}
	}

	s.writeJSON(w, http.StatusOK, quotesResponse{
		Quotes:       quotes,
		NoData:       len(quotes) == 0,
		MarketStatus: s.cfg.Service.MarketStatus(),
	})
}

// handleQuote serves a single live or historical quote.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		s.writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	var q *shared.Quote
	var err error
	switch date := r.URL.Query().Get("date"); date {
	case "":
		q, err = s.cfg.Service.GetQuote(r.Context(), symbol)
	default:
		target, parseErr := time.Parse("2006-01-02", date)
		if parseErr != nil {
			s.writeError(w, http.StatusBadRequest, "date must be formatted YYYY-MM-DD")
			return
		}

		q, err = s.cfg.Service.GetQuoteForDate(r.Context(), symbol, target)
	}
	if err != nil {
		if errors.Is(err, shared.ErrNoData) || errors.Is(err, shared.ErrNoUsableData) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("no data for %s", symbol))
			return
		}

		s.logger.Error().Msgf("fetching quote for %s: %v", symbol, err)
		s.writeError(w, http.StatusBadGateway, "quote fetch failed")
		return
	}

	s.writeJSON(w, http.StatusOK, q)
}

// parseRangeParam resolves the range query parameter, defaulting to a month.
func parseRangeParam(r *http.Request) (shared.Range, error) {
	v := r.URL.Query().Get("range")
	if v == "" {
		return shared.OneMonth, nil
	}

	return shared.ParseRange(v)
}

// handleHistory serves the cleaned historical series for a symbol.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		s.writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	rng, err := parseRangeParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	series, err := s.cfg.Service.GetHistory(r.Context(), symbol, rng)
	if err != nil {
		s.logger.Error().Msgf("fetching history for %s: %v", symbol, err)
		s.writeError(w, http.StatusBadGateway, "history fetch failed")
		return
	}

	s.writeJSON(w, http.StatusOK, series)
}

// handleAnalytics serves the derived analytics snapshot for a symbol.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		s.writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	rng, err := parseRangeParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.cfg.Service.Analytics(r.Context(), symbol, rng)
	if err != nil {
		s.logger.Error().Msgf("deriving analytics for %s: %v", symbol, err)
		s.writeError(w, http.StatusBadGateway, "analytics fetch failed")
		return
	}
	if snap == nil {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("not enough data to analyze %s", symbol))
		return
	}

	s.writeJSON(w, http.StatusOK, snap)
}

// handleProjection serves the quote-based projection for a symbol.
func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		s.writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	proj, err := s.cfg.Service.ProjectQuote(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, shared.ErrNoData) || errors.Is(err, shared.ErrNoUsableData) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("no data for %s", symbol))
			return
		}

		s.logger.Error().Msgf("projecting quote for %s: %v", symbol, err)
		s.writeError(w, http.StatusBadGateway, "projection fetch failed")
		return
	}
	if proj == nil {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("no momentum to project for %s", symbol))
		return
	}

	s.writeJSON(w, http.StatusOK, proj)
}

// handleSearch serves symbol suggestions for a query.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	suggestions, err := s.cfg.Service.SearchSymbols(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.logger.Error().Msgf("searching symbols: %v", err)
		s.writeError(w, http.StatusBadGateway, "symbol search failed")
		return
	}

	s.writeJSON(w, http.StatusOK, suggestions)
}

// watchlistRequest represents a watchlist mutation payload.
type watchlistRequest struct {
	Symbol string `json:"symbol"`
}

// handleWatchlist serves and mutates the tracked symbol set.
func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, s.cfg.Service.Watchlist())

	case http.MethodPost:
		var req watchlistRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil || req.Symbol == "" {
			s.writeError(w, http.StatusBadRequest, "symbol is required")
			return
		}

		err = s.cfg.Service.AddSymbol(r.Context(), req.Symbol)
		if err != nil {
			s.logger.Error().Msgf("adding watchlist symbol %s: %v", req.Symbol, err)
			s.writeError(w, http.StatusInternalServerError, "adding symbol failed")
			return
		}

		s.writeJSON(w, http.StatusOK, s.cfg.Service.Watchlist())

	case http.MethodDelete:
		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			s.writeError(w, http.StatusBadRequest, "symbol is required")
			return
		}

		err := s.cfg.Service.RemoveSymbol(r.Context(), symbol)
		if err != nil {
			s.logger.Error().Msgf("removing watchlist symbol %s: %v", symbol, err)
			s.writeError(w, http.StatusInternalServerError, "removing symbol failed")
			return
		}

		s.writeJSON(w, http.StatusOK, s.cfg.Service.Watchlist())

	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// Run handles the lifecycle processes of the web server.
func (s *Server) Run(ctx context.Context) {
	go func() {
		s.logger.Info().Msgf("listening on %s", s.cfg.Listen)
		err := s.srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Msgf("serving api: %v", err)
			s.cfg.Cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	err := s.srv.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Error().Msgf("shutting down api server: %v", err)
	}
}
