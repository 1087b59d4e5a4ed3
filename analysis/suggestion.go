// Package analysis derives indicators, advisory suggestions and heuristic
// price projections from cleaned historical series and quotes.
package analysis

import (
	"sort"
	"strings"
)

// SuggestionKind represents the rule that produced a suggestion.
type SuggestionKind int

const (
	MomentumUp SuggestionKind = iota
	MomentumDown
	NearSupport
	NearResistance
	HighVolume
	HighVolatility
	TrendUp
	TrendDown
)

// String stringifies the provided suggestion kind.
func (k SuggestionKind) String() string {
	switch k {
	case MomentumUp:
		return "momentum-up"
	case MomentumDown:
		return "momentum-down"
	case NearSupport:
		return "near-support"
	case NearResistance:
		return "near-resistance"
	case HighVolume:
		return "high-volume"
	case HighVolatility:
		return "high-volatility"
	case TrendUp:
		return "trend-up"
	case TrendDown:
		return "trend-down"
	default:
		return "unknown"
	}
}

// MarshalText stringifies the suggestion kind for serialization.
func (k SuggestionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Priority represents the display priority of a suggestion.
type Priority int

const (
	Low Priority = iota
	Medium
	High
)

// String stringifies the provided priority.
func (p Priority) String() string {
	switch p {
	case High:
		return "high"
	case Medium:
		return "medium"
	default:
		return "low"
	}
}

// MarshalText stringifies the priority for serialization.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Suggestion represents a single advisory message derived from a series.
type Suggestion struct {
	Kind     SuggestionKind `json:"kind"`
	Message  string         `json:"message"`
	Priority Priority       `json:"priority"`
}

// sortSuggestions orders suggestions by priority descending while preserving
// the discovery order of equal priorities.
func sortSuggestions(suggestions []Suggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Priority > suggestions[j].Priority
	})
}

// currencyGlyph returns the display currency for a symbol. NSE listings
// render in rupees, everything else in dollars.
func currencyGlyph(symbol string) string {
	if strings.HasSuffix(strings.ToUpper(symbol), ".NS") {
		return "₹"
	}
	return "$"
}
