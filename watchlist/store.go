// Package watchlist persists the set of tracked symbols.
package watchlist

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

const (
	// SQL statements.
	createWatchlistTableSQL = "CREATE TABLE IF NOT EXISTS watchlist (symbol TEXT PRIMARY KEY, addedon INTEGER)"
	addSymbolSQL            = "INSERT OR IGNORE INTO watchlist(symbol, addedon) VALUES(?,?)"
	removeSymbolSQL         = "DELETE FROM watchlist WHERE symbol = ?"
	listSymbolsSQL          = "SELECT symbol FROM watchlist ORDER BY addedon ASC, symbol ASC"
)

// SymbolStorer defines the requirements for persisting watchlist symbols.
type SymbolStorer interface {
	// AddSymbol stores the provided symbol.
	AddSymbol(ctx context.Context, symbol string) error
	// RemoveSymbol removes the provided symbol.
	RemoveSymbol(ctx context.Context, symbol string) error
	// ListSymbols fetches all stored symbols in insertion order.
	ListSymbols(ctx context.Context) ([]string, error)
}

// StoreConfig is the configuration for the watchlist store.
type StoreConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the store logger.
	Logger *zerolog.Logger
}

// Store represents the watchlist database connection.
type Store struct {
	cfg    *StoreConfig
	client *rqlitehttp.Client
}

// Ensure the store implements the SymbolStorer interface.
var _ SymbolStorer = (*Store)(nil)

// NewStore initializes a new watchlist store.
func NewStore(ctx context.Context, cfg *StoreConfig) (*Store, error) {
	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating watchlist store client: %w", err)
	}

	client.SetBasicAuth(cfg.User, cfg.Pass)

	store := &Store{
		cfg:    cfg,
		client: client,
	}

	err = store.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping watchlist store: %w", err)
	}

	return store, nil
}

// bootstrap initializes the watchlist schema.
func (s *Store) bootstrap(ctx context.Context) error {
	_, err := s.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createWatchlistTableSQL},
	}, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	return nil
}

// AddSymbol stores the provided symbol. Adding an already tracked symbol is
// a no-op.
func (s *Store) AddSymbol(ctx context.Context, symbol string) error {
	resp, err := s.client.Execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL:              addSymbolSQL,
			PositionalParams: []any{strings.ToUpper(symbol), time.Now().Unix()},
		},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("adding watchlist symbol %s: %d -> %s", symbol, idx, errStr)
	}

	return nil
}

// RemoveSymbol removes the provided symbol.
func (s *Store) RemoveSymbol(ctx context.Context, symbol string) error {
	resp, err := s.client.Execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL:              removeSymbolSQL,
			PositionalParams: []any{strings.ToUpper(symbol)},
		},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("removing watchlist symbol %s: %d -> %s", symbol, idx, errStr)
	}

	return nil
}

// ListSymbols fetches all stored symbols in insertion order.
func (s *Store) ListSymbols(ctx context.Context) ([]string, error) {
	resp, err := s.client.QuerySingle(ctx, listSymbolsSQL)
	if err != nil {
		return nil, err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return nil, fmt.Errorf("listing watchlist symbols: %d -> %s", idx, errStr)
	}

	// QuerySingle requests the default result form, so the response carries
	// positional rows with the symbol as the sole column.
	results, _ := resp.Results.([]rqlitehttp.QueryResult)

	symbols := make([]string, 0)
	for _, result := range results {
		for _, row := range result.Values {
			if len(row) == 0 {
				continue
			}

			symbol, ok := row[0].(string)
			if !ok {
				s.cfg.Logger.Error().Msgf("unexpected watchlist row shape: %s", spew.Sdump(row))
				continue
			}

			symbols = append(symbols, symbol)
		}
	}

	return symbols, nil
}
