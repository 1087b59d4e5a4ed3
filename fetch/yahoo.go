package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"watchdeck/shared"
)

const (
	// BaseURL is the primary quote api host.
	BaseURL = "https://query1.finance.yahoo.com"
	// FallbackURL is the alternate quote api host tried when the primary
	// route fails.
	FallbackURL = "https://query2.finance.yahoo.com"

	// userAgent identifies requests to the quote api; it rejects the Go
	// default agent.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// minQueryLength is the shortest accepted symbol search query.
	minQueryLength = 2
	// maxSuggestions caps the number of symbol search results.
	maxSuggestions = 10
)

// Config represents the configuration for the quote api client.
type Config struct {
	// BaseURL is the primary api host.
	BaseURL string
	// FallbackURL is the alternate api host, tried in order after the
	// primary. Empty disables the fallback route.
	FallbackURL string
}

// Client represents the quote api client.
type Client struct {
	cfg   *Config
	httpc http.Client
}

// NewClient instantiates a new quote api client.
func NewClient(cfg *Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}

	return &Client{
		cfg:   cfg,
		httpc: http.Client{Timeout: time.Second * 30},
	}
}

// routes returns the ordered transport routes to attempt.
func (c *Client) routes() []string {
	routes := []string{c.cfg.BaseURL}
	if c.cfg.FallbackURL != "" {
		routes = append(routes, c.cfg.FallbackURL)
	}
	return routes
}

// get fetches the provided path from each route in order, returning the first
// successful response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	var lastErr error

	for _, route := range c.routes() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, route+path, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = &shared.FetchError{Route: route, Err: err}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = &shared.FetchError{Route: route, Err: err}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = &shared.FetchError{Route: route, Err: fmt.Errorf("status %d", resp.StatusCode)}
			continue
		}

		return body, nil
	}

	return nil, lastErr
}

// FetchChart fetches chart data for a symbol at the provided interval and
// range, exhausting all transport routes before giving up.
func (c *Client) FetchChart(ctx context.Context, symbol string, interval string, rng string) (*ChartData, error) {
	params := url.Values{}
	params.Add("interval", interval)
	params.Add("range", rng)
	params.Add("includePrePost", "false")

	path := fmt.Sprintf("/v8/finance/chart/%s?%s", url.PathEscape(symbol), params.Encode())
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	return ParseChart(body)
}

// Search fetches symbol suggestions matching the provided query. Queries
// shorter than the minimum length fail with ErrEmptyQuery.
func (c *Client) Search(ctx context.Context, query string) ([]shared.SymbolSuggestion, error) {
	if len(query) < minQueryLength {
		return nil, shared.ErrEmptyQuery
	}

	params := url.Values{}
	params.Add("q", query)
	params.Add("quotesCount", "10")
	params.Add("newsCount", "0")

	body, err := c.get(ctx, "/v1/finance/search?"+params.Encode())
	if err != nil {
		return nil, err
	}

	return parseSuggestions(body), nil
}

// parseSuggestions parses symbol suggestions from a search payload, dropping
// entries without a symbol and long name.
func parseSuggestions(body []byte) []shared.SymbolSuggestion {
	quotes := gjson.GetBytes(body, "quotes").Array()
	suggestions := make([]shared.SymbolSuggestion, 0, len(quotes))

	for idx := range quotes {
		symbol := quotes[idx].Get("symbol").String()
		longName := quotes[idx].Get("longname").String()
		if symbol == "" || longName == "" {
			continue
		}

		quoteType := quotes[idx].Get("quoteType").String()
		if quoteType == "" {
			quoteType = "EQUITY"
		}

		suggestions = append(suggestions, shared.SymbolSuggestion{
			Symbol:    symbol,
			Name:      longName,
			Exchange:  quotes[idx].Get("exchange").String(),
			QuoteType: quoteType,
		})

		if len(suggestions) == maxSuggestions {
			break
		}
	}

	return suggestions
}
