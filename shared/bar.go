package shared

import "time"

// Bar represents a single sampled OHLCV observation for a symbol.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Series represents a chronologically ordered sequence of bars for one symbol.
// Bars are appended in ascending timestamp order; consumers receive copies and
// must not mutate upstream state.
type Series []Bar

// Closes collects the close prices of the series in order.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s))
	for idx := range s {
		closes[idx] = s[idx].Close
	}
	return closes
}

// Highs collects the high prices of the series in order.
func (s Series) Highs() []float64 {
	highs := make([]float64, len(s))
	for idx := range s {
		highs[idx] = s[idx].High
	}
	return highs
}

// Lows collects the low prices of the series in order.
func (s Series) Lows() []float64 {
	lows := make([]float64, len(s))
	for idx := range s {
		lows[idx] = s[idx].Low
	}
	return lows
}

// Volumes collects the volumes of the series in order.
func (s Series) Volumes() []int64 {
	volumes := make([]int64, len(s))
	for idx := range s {
		volumes[idx] = s[idx].Volume
	}
	return volumes
}
