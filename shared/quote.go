package shared

import "time"

// Quote represents the canonical normalized snapshot for a symbol. A quote is
// constructed fresh on every fetch cycle and superseded wholesale by the next
// one; it is never patched in place.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Volume        int64     `json:"volume"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Open          float64   `json:"open"`
	PreviousClose float64   `json:"previousClose"`
	MarketTime    time.Time `json:"marketTime"`

	// DataDate is set when the quote was resolved for a historical date
	// rather than the present, so callers can render "as of" semantics.
	DataDate time.Time `json:"dataDate,omitempty"`
}

// SymbolSuggestion represents a single symbol search result.
type SymbolSuggestion struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Exchange  string `json:"exchange"`
	QuoteType string `json:"quoteType"`
}
