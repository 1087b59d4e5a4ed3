package fetch

import (
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"watchdeck/shared"
)

// ChartMeta represents the exchange metadata attached to a chart response.
// Optional numeric fields keep their zero value when absent; upstream never
// reports a real price of zero, so zero doubles as the missing marker.
type ChartMeta struct {
	Symbol    string
	LongName  string
	ShortName string

	PreviousClose              float64
	ChartPreviousClose         float64
	RegularMarketPreviousClose float64
	RegularMarketPrice         float64
	RegularMarketOpen          float64
	RegularMarketDayHigh       float64
	RegularMarketDayLow        float64
	RegularMarketVolume        float64
	RegularMarketTime          int64

	PostMarketOpen    float64
	PostMarketDayHigh float64
	PostMarketDayLow  float64
	PostMarketVolume  float64
	PostMarketTime    int64
}

// Name resolves the display name for the metadata, preferring the long name.
func (m *ChartMeta) Name(symbol string) string {
	switch {
	case m.LongName != "":
		return m.LongName
	case m.ShortName != "":
		return m.ShortName
	case m.Symbol != "":
		return m.Symbol
	default:
		return symbol
	}
}

// ChartData represents a raw chart response: metadata plus parallel OHLCV
// arrays aligned with the timestamps. A NaN entry marks a null sample.
type ChartData struct {
	Meta       ChartMeta
	Timestamps []int64
	Open       []float64
	High       []float64
	Low        []float64
	Close      []float64
	Volume     []float64
}

// parseSamples expands a quote indicator array into a float slice aligned
// with the timestamp count, substituting NaN for null or missing entries.
func parseSamples(field gjson.Result, count int) []float64 {
	samples := make([]float64, count)
	values := field.Array()

	for idx := 0; idx < count; idx++ {
		if idx >= len(values) || values[idx].Type == gjson.Null {
			samples[idx] = math.NaN()
			continue
		}
		samples[idx] = values[idx].Float()
	}

	return samples
}

// ParseChart parses a chart payload into chart data.
func ParseChart(body []byte) (*ChartData, error) {
	chart := gjson.GetBytes(body, "chart")
	if apiErr := chart.Get("error"); apiErr.Exists() && apiErr.Type != gjson.Null {
		return nil, fmt.Errorf("chart api error: %s", apiErr.Get("description").String())
	}

	result := chart.Get("result.0")
	if !result.Exists() {
		return nil, shared.ErrNoData
	}

	meta := result.Get("meta")
	data := &ChartData{
		Meta: ChartMeta{
			Symbol:                     meta.Get("symbol").String(),
			LongName:                   meta.Get("longName").String(),
			ShortName:                  meta.Get("shortName").String(),
			PreviousClose:              meta.Get("previousClose").Float(),
			ChartPreviousClose:         meta.Get("chartPreviousClose").Float(),
			RegularMarketPreviousClose: meta.Get("regularMarketPreviousClose").Float(),
			RegularMarketPrice:         meta.Get("regularMarketPrice").Float(),
			RegularMarketOpen:          meta.Get("regularMarketOpen").Float(),
			RegularMarketDayHigh:       meta.Get("regularMarketDayHigh").Float(),
			RegularMarketDayLow:        meta.Get("regularMarketDayLow").Float(),
			RegularMarketVolume:        meta.Get("regularMarketVolume").Float(),
			RegularMarketTime:          meta.Get("regularMarketTime").Int(),
			PostMarketOpen:             meta.Get("postMarketOpen").Float(),
			PostMarketDayHigh:          meta.Get("postMarketDayHigh").Float(),
			PostMarketDayLow:           meta.Get("postMarketDayLow").Float(),
			PostMarketVolume:           meta.Get("postMarketVolume").Float(),
			PostMarketTime:             meta.Get("postMarketTime").Int(),
		},
	}

	timestamps := result.Get("timestamp").Array()
	data.Timestamps = make([]int64, len(timestamps))
	for idx := range timestamps {
		data.Timestamps[idx] = timestamps[idx].Int()
	}

	quote := result.Get("indicators.quote.0")
	count := len(data.Timestamps)
	data.Open = parseSamples(quote.Get("open"), count)
	data.High = parseSamples(quote.Get("high"), count)
	data.Low = parseSamples(quote.Get("low"), count)
	data.Close = parseSamples(quote.Get("close"), count)
	data.Volume = parseSamples(quote.Get("volume"), count)

	return data, nil
}
