// Package service coordinates quote fetching, refresh scheduling and the
// watchlist lifecycle.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"

	"watchdeck/analysis"
	"watchdeck/fetch"
	"watchdeck/quote"
	"watchdeck/shared"
	"watchdeck/watchlist"
)

const (
	// defaultRefreshInterval spaces the scheduled watchlist refreshes.
	defaultRefreshInterval = time.Second * 10

	// quoteRange is the span fetched when resolving a live quote. It reaches
	// back far enough for the previous-close scan on sparse symbols.
	quoteRange = shared.OneMonth
	// quoteInterval is the sampling interval for quote fetches. Quotes always
	// derive from completed daily bars so the change measures the move against
	// the prior session, never an intraday tick.
	quoteInterval = "1d"
)

// Config represents the configuration struct for the service.
type Config struct {
	// Symbols represents the initially tracked symbols.
	Symbols []string
	// RefreshInterval is the spacing between scheduled refresh cycles.
	RefreshInterval time.Duration
	// Client is the quote api client.
	Client *fetch.Client
	// Store persists the watchlist. A nil store keeps the watchlist in
	// memory only.
	Store watchlist.SymbolStorer
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if cfg.Client == nil {
		errs = errors.Join(errs, fmt.Errorf("quote api client cannot be nil"))
	}
	if cfg.Cancel == nil {
		errs = errors.Join(errs, fmt.Errorf("context cancellation function cannot be nil"))
	}
	if cfg.RefreshInterval < 0 {
		errs = errors.Join(errs, fmt.Errorf("refresh interval cannot be negative"))
	}

	return errs
}

// Service represents the watchlist dashboard service.
type Service struct {
	cfg       *Config
	scheduler gocron.Scheduler
	logger    *zerolog.Logger

	symbolsMtx sync.RWMutex
	symbols    []string

	quotesMtx    sync.Mutex
	quotes       []*shared.Quote
	publishedSeq uint64
	nextSeq      uint64

	wg sync.WaitGroup
}

// NewService initializes a new watchlist dashboard service.
func NewService(ctx context.Context, cfg *Config) (*Service, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	logger := log.With().Str("service", "watchdeck").Logger()

	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = defaultRefreshInterval
	}

	symbols := make([]string, 0, len(cfg.Symbols))
	switch {
	case cfg.Store != nil:
		// Seed the store with the configured symbols, then let it own the
		// watchlist.
		for idx := range cfg.Symbols {
			err := cfg.Store.AddSymbol(ctx, cfg.Symbols[idx])
			if err != nil {
				return nil, fmt.Errorf("seeding watchlist: %w", err)
			}
		}

		symbols, err = cfg.Store.ListSymbols(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading watchlist: %w", err)
		}
	default:
		for idx := range cfg.Symbols {
			symbols = append(symbols, strings.ToUpper(cfg.Symbols[idx]))
		}
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("creating job scheduler: %w", err)
	}

	service := &Service{
		cfg:       cfg,
		scheduler: scheduler,
		logger:    &logger,
		symbols:   symbols,
	}

	return service, nil
}

// Watchlist returns the currently tracked symbols.
func (s *Service) Watchlist() []string {
	s.symbolsMtx.RLock()
	defer s.symbolsMtx.RUnlock()

	symbols := make([]string, len(s.symbols))
	copy(symbols, s.symbols)
	return symbols
}

// AddSymbol adds the provided symbol to the watchlist. Adding a tracked
// symbol is a no-op.
func (s *Service) AddSymbol(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return fmt.Errorf("symbol cannot be an empty string")
	}

	if s.cfg.Store != nil {
		err := s.cfg.Store.AddSymbol(ctx, symbol)
		if err != nil {
			return err
		}
	}

	s.symbolsMtx.Lock()
	defer s.symbolsMtx.Unlock()

	for idx := range s.symbols {
		if s.symbols[idx] == symbol {
			return nil
		}
	}
	s.symbols = append(s.symbols, symbol)

	return nil
}

// RemoveSymbol removes the provided symbol from the watchlist.
func (s *Service) RemoveSymbol(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	if s.cfg.Store != nil {
		err := s.cfg.Store.RemoveSymbol(ctx, symbol)
		if err != nil {
			return err
		}
	}

	s.symbolsMtx.Lock()
	defer s.symbolsMtx.Unlock()

	for idx := range s.symbols {
		if s.symbols[idx] == symbol {
			s.symbols = append(s.symbols[:idx], s.symbols[idx+1:]...)
			break
		}
	}

	return nil
}

// GetQuote fetches and normalizes the live quote for the provided symbol.
func (s *Service) GetQuote(ctx context.Context, symbol string) (*shared.Quote, error) {
	chart, err := s.cfg.Client.FetchChart(ctx, symbol, quoteInterval, quoteRange.String())
	if err != nil {
		return nil, err
	}

	return quote.Normalize(symbol, chart, time.Now())
}

// GetQuoteForDate resolves the quote for the provided symbol as of the
// provided historical date.
func (s *Service) GetQuoteForDate(ctx context.Context, symbol string, date time.Time) (*shared.Quote, error) {
	rng := shared.RangeForDate(date, time.Now())
	chart, err := s.cfg.Client.FetchChart(ctx, symbol, quoteInterval, rng.String())
	if err != nil {
		return nil, err
	}

	return quote.QuoteAsOf(symbol, chart, date)
}

// GetHistory fetches the cleaned historical series for the provided symbol
// and range. The series is empty, never nil, when no bars survive cleaning.
func (s *Service) GetHistory(ctx context.Context, symbol string, rng shared.Range) (shared.Series, error) {
	chart, err := s.cfg.Client.FetchChart(ctx, symbol, rng.Interval(), rng.String())
	if err != nil {
		return shared.Series{}, err
	}

	return quote.BuildSeries(chart), nil
}

// Analytics fetches history for the provided symbol and derives its analytics
// snapshot. Series too short to analyze yield a nil snapshot.
func (s *Service) Analytics(ctx context.Context, symbol string, rng shared.Range) (*analysis.Snapshot, error) {
	series, err := s.GetHistory(ctx, symbol, rng)
	if err != nil {
		return nil, err
	}

	return analysis.Analyze(symbol, series, rng), nil
}

// ProjectQuote fetches the live quote for the provided symbol and derives its
// quote-based projection.
func (s *Service) ProjectQuote(ctx context.Context, symbol string) (*analysis.QuoteProjection, error) {
	q, err := s.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	return analysis.ProjectQuote(q), nil
}

// SearchSymbols fetches symbol suggestions for the provided query. Queries
// below the minimum length yield an empty list rather than an error.
func (s *Service) SearchSymbols(ctx context.Context, query string) ([]shared.SymbolSuggestion, error) {
	suggestions, err := s.cfg.Client.Search(ctx, query)
	if err != nil {
		if errors.Is(err, shared.ErrEmptyQuery) {
			return []shared.SymbolSuggestion{}, nil
		}
		return nil, err
	}

	return suggestions, nil
}

// Quotes returns the last published refresh snapshot in watchlist order.
func (s *Service) Quotes() []*shared.Quote {
	s.quotesMtx.Lock()
	defer s.quotesMtx.Unlock()

	quotes := make([]*shared.Quote, len(s.quotes))
	copy(quotes, s.quotes)
	return quotes
}

// RefreshAll fetches quotes for every tracked symbol concurrently and
// publishes the snapshot. Individual symbol failures are logged and skipped;
// a cycle only fails as a whole when every symbol does. Snapshots publish in
// cycle start order so a stalled earlier cycle cannot clobber a newer one.
func (s *Service) RefreshAll(ctx context.Context) {
	symbols := s.Watchlist()
	cycle := uuid.New().String()

	s.quotesMtx.Lock()
	s.nextSeq++
	seq := s.nextSeq
	s.quotesMtx.Unlock()

	if len(symbols) == 0 {
		s.publish(seq, []*shared.Quote{})
		return
	}

	results := make([]*shared.Quote, len(symbols))

	var wg sync.WaitGroup
	wg.Add(len(symbols))
	for idx := range symbols {
		go func(idx int) {
			defer wg.Done()

			q, err := s.GetQuote(ctx, symbols[idx])
			if err != nil {
				s.logger.Error().Str("cycle", cycle).Str("symbol", symbols[idx]).
					Msgf("fetching quote: %v", err)
				return
			}

			results[idx] = q
		}(idx)
	}
	wg.Wait()

	quotes := make([]*shared.Quote, 0, len(results))
	for idx := range results {
		if results[idx] != nil {
			quotes = append(quotes, results[idx])
		}
	}

	if len(quotes) == 0 {
		s.logger.Error().Str("cycle", cycle).Msg("refresh cycle yielded no quotes")
	}

	s.publish(seq, quotes)
}

// publish installs a refresh snapshot unless a later cycle already published.
func (s *Service) publish(seq uint64, quotes []*shared.Quote) {
	s.quotesMtx.Lock()
	defer s.quotesMtx.Unlock()

	if seq <= s.publishedSeq {
		return
	}

	s.publishedSeq = seq
	s.quotes = quotes
}

// MarketStatus returns the market session status for the current time.
func (s *Service) MarketStatus() shared.MarketStatus {
	return shared.Status(time.Now())
}

// Run handles the lifecycle processes of the service.
func (s *Service) Run(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RefreshAll(ctx)
	}()

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.cfg.RefreshInterval),
		gocron.NewTask(func() { s.RefreshAll(ctx) }),
	)
	if err != nil {
		s.logger.Error().Msgf("scheduling refresh job: %v", err)
		s.cfg.Cancel()
		return
	}

	s.scheduler.Start()

	<-ctx.Done()

	err = s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error().Msgf("shutting down job scheduler: %v", err)
	}

	s.wg.Wait()
}
