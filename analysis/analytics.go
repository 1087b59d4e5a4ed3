package analysis

import (
	"fmt"

	"watchdeck/shared"
)

const (
	// momentumThresholdPercent is the single-bar move that flags momentum.
	momentumThresholdPercent = 2.0
	// supportProximityFactor widens the support level for proximity checks.
	supportProximityFactor = 1.02
	// resistanceProximityFactor narrows the resistance level for proximity checks.
	resistanceProximityFactor = 0.98
	// volumeRatioThreshold is the multiple of average volume flagged as high.
	volumeRatioThreshold = 1.5
	// volatilityThresholdPercent is the close-range spread flagged as volatile.
	volatilityThresholdPercent = 10.0
	// trendStrengthThresholdPercent is the total move that flags a trend.
	trendStrengthThresholdPercent = 5.0
	// trendWindow is the bar count of the trend direction window.
	trendWindow = 5
)

// Snapshot represents the derived analytics for a series. It is recomputed
// from scratch whenever the series changes and is never patched in place.
type Snapshot struct {
	CurrentPrice       float64        `json:"currentPrice"`
	PriceChange        float64        `json:"priceChange"`
	PriceChangePercent float64        `json:"priceChangePercent"`
	TotalChangePercent float64        `json:"totalChangePercent"`
	Support            float64        `json:"support"`
	Resistance         float64        `json:"resistance"`
	AvgVolume          float64        `json:"avgVolume"`
	VolumeRatio        float64        `json:"volumeRatio"`
	Uptrend            bool           `json:"isUptrend"`
	TrendStrength      float64        `json:"trendStrength"`
	VolatilityPercent  float64        `json:"volatilityPercent"`
	Suggestions        []Suggestion   `json:"suggestions"`
	Projection         *ProjectionSet `json:"projection,omitempty"`
}

// Analyze computes the analytics snapshot for a cleaned series. Fewer than
// two bars yields nil rather than an error; there is nothing to derive.
func Analyze(symbol string, series shared.Series, rng shared.Range) *Snapshot {
	if len(series) < 2 {
		return nil
	}

	closes := series.Closes()
	currentPrice := closes[len(closes)-1]
	previousPrice := closes[len(closes)-2]
	firstPrice := closes[0]

	snap := &Snapshot{
		CurrentPrice: currentPrice,
		PriceChange:  currentPrice - previousPrice,
	}
	if previousPrice != 0 {
		snap.PriceChangePercent = (currentPrice - previousPrice) / previousPrice * 100
	}
	if firstPrice != 0 {
		snap.TotalChangePercent = (currentPrice - firstPrice) / firstPrice * 100
	}

	snap.Support = minOf(series.Lows())
	snap.Resistance = maxOf(series.Highs())

	volumes := series.Volumes()
	var totalVolume float64
	for idx := range volumes {
		totalVolume += float64(volumes[idx])
	}
	snap.AvgVolume = totalVolume / float64(len(volumes))
	if snap.AvgVolume != 0 {
		snap.VolumeRatio = float64(volumes[len(volumes)-1]) / snap.AvgVolume
	}

	window := closes
	if len(window) > trendWindow {
		window = closes[len(closes)-trendWindow:]
	}
	snap.Uptrend = window[len(window)-1] >= window[0]
	snap.TrendStrength = abs(snap.TotalChangePercent)

	if currentPrice != 0 {
		snap.VolatilityPercent = (maxOf(closes) - minOf(closes)) / currentPrice * 100
	}

	snap.Suggestions = buildSuggestions(symbol, snap)
	snap.Projection = projectSeries(series, rng, snap)

	return snap
}

// buildSuggestions evaluates every advisory rule independently; all firing
// rules are collected, then ordered by priority for display.
func buildSuggestions(symbol string, snap *Snapshot) []Suggestion {
	currency := currencyGlyph(symbol)
	suggestions := make([]Suggestion, 0, 4)

	switch {
	case snap.PriceChangePercent > momentumThresholdPercent:
		suggestions = append(suggestions, Suggestion{
			Kind:     MomentumUp,
			Message:  fmt.Sprintf("Strong upward momentum (+%.2f%%). Consider buying on dips.", snap.PriceChangePercent),
			Priority: High,
		})
	case snap.PriceChangePercent < -momentumThresholdPercent:
		suggestions = append(suggestions, Suggestion{
			Kind:     MomentumDown,
			Message:  fmt.Sprintf("Significant decline (%.2f%%). Tighten stop-loss or consider exit.", snap.PriceChangePercent),
			Priority: High,
		})
	}

	if snap.CurrentPrice <= snap.Support*supportProximityFactor {
		suggestions = append(suggestions, Suggestion{
			Kind:     NearSupport,
			Message:  fmt.Sprintf("Near support level (%s%.2f). Potential buying opportunity.", currency, snap.Support),
			Priority: Medium,
		})
	}

	if snap.CurrentPrice >= snap.Resistance*resistanceProximityFactor {
		suggestions = append(suggestions, Suggestion{
			Kind:     NearResistance,
			Message:  fmt.Sprintf("Approaching resistance (%s%.2f). Consider taking profits.", currency, snap.Resistance),
			Priority: Medium,
		})
	}

	if snap.VolumeRatio > volumeRatioThreshold {
		suggestions = append(suggestions, Suggestion{
			Kind:     HighVolume,
			Message:  fmt.Sprintf("High volume activity (%.1fx average). Strong interest detected.", snap.VolumeRatio),
			Priority: Low,
		})
	}

	if snap.VolatilityPercent > volatilityThresholdPercent {
		suggestions = append(suggestions, Suggestion{
			Kind:     HighVolatility,
			Message:  fmt.Sprintf("High volatility (%.1f%%). Trade with caution and use stop-loss.", snap.VolatilityPercent),
			Priority: Medium,
		})
	}

	switch {
	case snap.Uptrend && snap.TrendStrength > trendStrengthThresholdPercent:
		suggestions = append(suggestions, Suggestion{
			Kind:     TrendUp,
			Message:  fmt.Sprintf("Strong uptrend (+%.2f%% over period). Momentum suggests continued growth.", snap.TotalChangePercent),
			Priority: Medium,
		})
	case !snap.Uptrend && snap.TrendStrength > trendStrengthThresholdPercent:
		suggestions = append(suggestions, Suggestion{
			Kind:     TrendDown,
			Message:  fmt.Sprintf("Downtrend (%.2f%%). Wait for reversal signals before entry.", snap.TotalChangePercent),
			Priority: Medium,
		})
	}

	sortSuggestions(suggestions)
	return suggestions
}

// minOf returns the smallest of the provided values.
func minOf(values []float64) float64 {
	min := values[0]
	for idx := range values {
		if values[idx] < min {
			min = values[idx]
		}
	}
	return min
}

// maxOf returns the largest of the provided values.
func maxOf(values []float64) float64 {
	max := values[0]
	for idx := range values {
		if values[idx] > max {
			max = values[idx]
		}
	}
	return max
}

// abs returns the absolute value.
func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
