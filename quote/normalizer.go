package quote

import (
	"strings"
	"time"

	"watchdeck/fetch"
	"watchdeck/shared"
)

// quoteSource produces a quote from one tier of the fallback chain, or
// signals the next tier should be tried.
type quoteSource func() (*shared.Quote, error)

// Normalize builds the canonical current quote for a symbol from a chart
// response. Sources are tried in order: extraction from the sampled series,
// then a metadata-only quote. Inputs are never mutated; the same inputs
// always yield the same quote.
func Normalize(symbol string, chart *fetch.ChartData, now time.Time) (*shared.Quote, error) {
	sources := []quoteSource{
		func() (*shared.Quote, error) { return quoteFromSeries(symbol, chart, now) },
		func() (*shared.Quote, error) { return quoteFromMeta(symbol, chart, now) },
	}

	for _, source := range sources {
		q, err := source()
		if err != nil {
			continue
		}

		applyLiveOverride(q, &chart.Meta, now)
		return q, nil
	}

	return nil, shared.ErrNoData
}

// quoteFromSeries extracts a quote from the sampled closes, falling back to
// metadata for individually missing fields.
func quoteFromSeries(symbol string, chart *fetch.ChartData, now time.Time) (*shared.Quote, error) {
	meta := &chart.Meta

	last, lastIdx, ok := LastUsableClose(chart.Close)
	if !ok || last == 0 {
		return nil, shared.ErrNoUsableData
	}

	previousClose, ok := PreviousUsableClose(chart.Close, lastIdx)
	if !ok || previousClose == 0 {
		previousClose = firstNonZero(meta.PreviousClose, meta.ChartPreviousClose, last)
	}

	change := last - previousClose
	var changePercent float64
	if previousClose != 0 {
		changePercent = change / previousClose * 100
	}

	var volume int64
	switch {
	case Usable(chart.Volume[lastIdx]):
		volume = int64(chart.Volume[lastIdx])
	default:
		volume = int64(meta.RegularMarketVolume)
	}

	marketTime := now
	switch {
	case chart.Timestamps[lastIdx] != 0:
		marketTime = time.Unix(chart.Timestamps[lastIdx], 0)
	case meta.RegularMarketTime != 0:
		marketTime = time.Unix(meta.RegularMarketTime, 0)
	}

	return &shared.Quote{
		Symbol:        strings.ToUpper(symbol),
		Name:          meta.Name(symbol),
		Price:         last,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        volume,
		High:          FallbackPrice(chart.High[lastIdx], meta.RegularMarketDayHigh, last),
		Low:           FallbackPrice(chart.Low[lastIdx], meta.RegularMarketDayLow, last),
		Open:          FallbackPrice(chart.Open[lastIdx], meta.RegularMarketOpen, last),
		PreviousClose: previousClose,
		MarketTime:    marketTime,
	}, nil
}

// quoteFromMeta builds a metadata-only quote when the series held no usable
// close, treating the reported previous close as the current price so the
// symbol still renders rather than vanishing.
func quoteFromMeta(symbol string, chart *fetch.ChartData, now time.Time) (*shared.Quote, error) {
	meta := &chart.Meta

	price := firstNonZero(meta.PreviousClose, meta.ChartPreviousClose, meta.RegularMarketPreviousClose)
	if price == 0 {
		return nil, shared.ErrNoData
	}

	// The day-before close, for a non-zero change, is the rightmost usable
	// close distinct from the reported previous close.
	dayBefore := price
	for idx := len(chart.Close) - 1; idx >= 0; idx-- {
		if Usable(chart.Close[idx]) && chart.Close[idx] != price {
			dayBefore = chart.Close[idx]
			break
		}
	}

	change := price - dayBefore
	var changePercent float64
	if dayBefore != 0 && dayBefore != price {
		changePercent = change / dayBefore * 100
	}

	marketTime := now
	switch {
	case meta.RegularMarketTime != 0:
		marketTime = time.Unix(meta.RegularMarketTime, 0)
	case meta.PostMarketTime != 0:
		marketTime = time.Unix(meta.PostMarketTime, 0)
	case len(chart.Timestamps) > 0:
		marketTime = time.Unix(chart.Timestamps[len(chart.Timestamps)-1], 0)
	}

	return &shared.Quote{
		Symbol:        strings.ToUpper(symbol),
		Name:          meta.Name(symbol),
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        int64(firstNonZero(meta.RegularMarketVolume, meta.PostMarketVolume)),
		High:          firstNonZero(meta.RegularMarketDayHigh, meta.PostMarketDayHigh, price),
		Low:           firstNonZero(meta.RegularMarketDayLow, meta.PostMarketDayLow, price),
		Open:          firstNonZero(meta.RegularMarketOpen, meta.PostMarketOpen, price),
		PreviousClose: dayBefore,
		MarketTime:    marketTime,
	}, nil
}

// applyLiveOverride replaces the quote price with the live market price when
// the market is open. The change is recomputed only when the previous close
// differs from the live price; when they are equal the previously computed
// change is kept. When the market is closed the last completed session's
// close stands as the price.
func applyLiveOverride(q *shared.Quote, meta *fetch.ChartMeta, now time.Time) {
	if !shared.IsMarketOpen(now) || meta.RegularMarketPrice == 0 {
		return
	}

	q.Price = meta.RegularMarketPrice
	if q.PreviousClose != 0 && q.PreviousClose != meta.RegularMarketPrice {
		q.Change = q.Price - q.PreviousClose
		q.ChangePercent = q.Change / q.PreviousClose * 100
	}
}
