package quote

import (
	"strings"
	"time"

	"watchdeck/fetch"
	"watchdeck/shared"
)

// BuildSeries converts a chart response into a cleaned, ordered series. A
// bar is dropped when any of its open, high, low or close samples is null;
// a missing volume defaults to zero rather than dropping the bar.
func BuildSeries(chart *fetch.ChartData) shared.Series {
	series := make(shared.Series, 0, len(chart.Timestamps))

	for idx := range chart.Timestamps {
		if !Usable(chart.Close[idx]) || !Usable(chart.Open[idx]) ||
			!Usable(chart.High[idx]) || !Usable(chart.Low[idx]) {
			continue
		}

		var volume int64
		if Usable(chart.Volume[idx]) {
			volume = int64(chart.Volume[idx])
		}

		series = append(series, shared.Bar{
			Timestamp: time.Unix(chart.Timestamps[idx], 0),
			Open:      chart.Open[idx],
			High:      chart.High[idx],
			Low:       chart.Low[idx],
			Close:     chart.Close[idx],
			Volume:    volume,
		})
	}

	return series
}

// QuoteAsOf resolves the quote for the last bar at or before the target
// date. It fails with ErrNoData when the target predates all sampled data.
// The returned quote carries DataDate so callers can render "as of"
// semantics distinct from the market time.
func QuoteAsOf(symbol string, chart *fetch.ChartData, target time.Time) (*shared.Quote, error) {
	targetUnix := target.Unix()

	matched := -1
	for idx := len(chart.Timestamps) - 1; idx >= 0; idx-- {
		if chart.Timestamps[idx] <= targetUnix {
			matched = idx
			break
		}
	}
	if matched == -1 {
		return nil, shared.ErrNoData
	}

	closePrice := chart.Close[matched]
	if !Usable(closePrice) {
		return nil, shared.ErrNoData
	}

	meta := &chart.Meta
	previousClose, ok := PreviousUsableClose(chart.Close, matched)
	if !ok || previousClose == 0 {
		previousClose = firstNonZero(meta.PreviousClose, meta.ChartPreviousClose, closePrice)
	}

	change := closePrice - previousClose
	var changePercent float64
	if previousClose != 0 {
		changePercent = change / previousClose * 100
	}

	var volume int64
	if Usable(chart.Volume[matched]) {
		volume = int64(chart.Volume[matched])
	}

	matchedTime := time.Unix(chart.Timestamps[matched], 0)

	return &shared.Quote{
		Symbol:        strings.ToUpper(symbol),
		Name:          meta.Name(symbol),
		Price:         closePrice,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        volume,
		High:          dayPrice(chart.High[matched], closePrice),
		Low:           dayPrice(chart.Low[matched], closePrice),
		Open:          dayPrice(chart.Open[matched], closePrice),
		PreviousClose: previousClose,
		MarketTime:    matchedTime,
		DataDate:      matchedTime,
	}, nil
}

// dayPrice resolves a same-day price field, defaulting to the matched close.
func dayPrice(sample float64, closePrice float64) float64 {
	if Usable(sample) && sample != 0 {
		return sample
	}
	return closePrice
}
