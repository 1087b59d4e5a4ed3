package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"

	"watchdeck/fetch"
	"watchdeck/shared"
)

// chartBody renders a minimal chart payload for the provided symbol.
func chartBody(symbol string) string {
	return fmt.Sprintf(`{
		"chart": {
			"result": [{
				"meta": {"symbol": %q, "longName": "Test Listing", "previousClose": 100.0},
				"timestamp": [1704875400, 1704961800, 1705048200],
				"indicators": {
					"quote": [{
						"open":   [100.0, 102.0, 104.0],
						"high":   [101.0, 103.0, 105.0],
						"low":    [99.0, 101.0, 103.0],
						"close":  [100.5, 102.5, 104.5],
						"volume": [1000, 1200, 1400]
					}]
				}
			}],
			"error": null
		}
	}`, symbol)
}

// chartServer serves chart payloads, failing requests for the provided
// symbols.
func chartServer(t *testing.T, failing ...string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		for _, f := range failing {
			if symbol == f {
				w.WriteHeader(http.StatusNotFound)
				return
			}
		}

		w.Write([]byte(chartBody(symbol)))
	}))
}

// newTestService builds a service against the provided test server.
func newTestService(t *testing.T, srv *httptest.Server, symbols ...string) (*Service, context.Context) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	svc, err := NewService(ctx, &Config{
		Symbols: symbols,
		Client:  fetch.NewClient(&fetch.Config{BaseURL: srv.URL}),
		Cancel:  cancel,
	})
	assert.NoError(t, err)

	return svc, ctx
}

func TestConfigValidate(t *testing.T) {
	// Ensure missing requirements are all reported.
	cfg := Config{RefreshInterval: -1}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors, got nil")
	}

	for _, want := range []string{
		"quote api client cannot be nil",
		"context cancellation function cannot be nil",
		"refresh interval cannot be negative",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to contain %q, got %v", want, err)
		}
	}
}

func TestGetQuote(t *testing.T) {
	srv := chartServer(t)
	defer srv.Close()

	svc, ctx := newTestService(t, srv, "RELIANCE.NS")

	q, err := svc.GetQuote(ctx, "reliance.ns")
	assert.NoError(t, err)
	assert.Equal(t, q.Symbol, "RELIANCE.NS")
	assert.Equal(t, q.Price, 104.5)
	assert.Equal(t, q.PreviousClose, 102.5)
}

func TestQuoteFetchUsesDailyBars(t *testing.T) {
	var mtx sync.Mutex
	var intervals, ranges []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mtx.Lock()
		intervals = append(intervals, r.URL.Query().Get("interval"))
		ranges = append(ranges, r.URL.Query().Get("range"))
		mtx.Unlock()

		symbol := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		w.Write([]byte(chartBody(symbol)))
	}))
	defer srv.Close()

	svc, ctx := newTestService(t, srv, "RELIANCE.NS")

	_, err := svc.GetQuote(ctx, "RELIANCE.NS")
	assert.NoError(t, err)

	// Historical quotes widen the fetched span with the date but still sample
	// daily bars; intraday intervals are rejected upstream past short spans.
	date := time.Now().AddDate(0, 0, -60)
	_, err = svc.GetQuoteForDate(ctx, "RELIANCE.NS", date)
	assert.NoError(t, err)

	// Ensure both quote paths request completed daily bars.
	assert.Equal(t, intervals, []string{"1d", "1d"})
	assert.Equal(t, ranges[0], "1mo")
	assert.Equal(t, ranges[1], "3mo")
}

func TestGetHistory(t *testing.T) {
	srv := chartServer(t)
	defer srv.Close()

	svc, ctx := newTestService(t, srv, "RELIANCE.NS")

	series, err := svc.GetHistory(ctx, "RELIANCE.NS", shared.OneMonth)
	assert.NoError(t, err)
	assert.Equal(t, len(series), 3)
	assert.Equal(t, series[2].Close, 104.5)
}

func TestGetHistoryFailureYieldsEmptySeries(t *testing.T) {
	srv := chartServer(t, "BAD.NS")
	defer srv.Close()

	svc, ctx := newTestService(t, srv, "BAD.NS")

	series, err := svc.GetHistory(ctx, "BAD.NS", shared.OneMonth)
	assert.Error(t, err)
	if series == nil {
		t.Fatal("expected an empty series, got nil")
	}
	assert.Equal(t, len(series), 0)
}

func TestRefreshAllPartialSuccess(t *testing.T) {
	srv := chartServer(t, "BAD.NS")
	defer srv.Close()

	svc, ctx := newTestService(t, srv, "GOOD.NS", "BAD.NS", "ALSO.NS")

	svc.RefreshAll(ctx)

	// Ensure the failing symbol is skipped and watchlist order is kept.
	quotes := svc.Quotes()
	assert.Equal(t, len(quotes), 2)
	assert.Equal(t, quotes[0].Symbol, "GOOD.NS")
	assert.Equal(t, quotes[1].Symbol, "ALSO.NS")
}

func TestPublishOrdering(t *testing.T) {
	srv := chartServer(t)
	defer srv.Close()

	svc, _ := newTestService(t, srv, "RELIANCE.NS")

	newer := []*shared.Quote{{Symbol: "NEWER.NS"}}
	older := []*shared.Quote{{Symbol: "OLDER.NS"}}

	// Ensure a stale cycle cannot clobber a newer published snapshot.
	svc.publish(2, newer)
	svc.publish(1, older)

	quotes := svc.Quotes()
	assert.Equal(t, len(quotes), 1)
	assert.Equal(t, quotes[0].Symbol, "NEWER.NS")
}

func TestWatchlistMutation(t *testing.T) {
	srv := chartServer(t)
	defer srv.Close()

	svc, ctx := newTestService(t, srv, "RELIANCE.NS")

	// Ensure symbols are uppercased and deduplicated.
	err := svc.AddSymbol(ctx, "tcs.ns")
	assert.NoError(t, err)
	err = svc.AddSymbol(ctx, "TCS.NS")
	assert.NoError(t, err)

	assert.Equal(t, svc.Watchlist(), []string{"RELIANCE.NS", "TCS.NS"})

	err = svc.RemoveSymbol(ctx, "reliance.ns")
	assert.NoError(t, err)
	assert.Equal(t, svc.Watchlist(), []string{"TCS.NS"})

	// Ensure adding an empty symbol fails.
	err = svc.AddSymbol(ctx, "  ")
	assert.Error(t, err)
}

func TestSearchSymbolsShortQuery(t *testing.T) {
	srv := chartServer(t)
	defer srv.Close()

	svc, ctx := newTestService(t, srv, "RELIANCE.NS")

	// Ensure short queries yield an empty list rather than an error.
	suggestions, err := svc.SearchSymbols(ctx, "r")
	assert.NoError(t, err)
	if suggestions == nil {
		t.Fatal("expected an empty suggestion list, got nil")
	}
	assert.Equal(t, len(suggestions), 0)
}
