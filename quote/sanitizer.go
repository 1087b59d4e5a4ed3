// Package quote turns raw, partially-null chart responses into canonical
// quotes and cleaned historical series.
package quote

import "math"

// Usable reports whether the provided sample is a finite, non-null price.
// Null samples are carried as NaN by the fetch layer.
func Usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// LastUsableClose scans the provided closes from the end and returns the
// rightmost usable close with its index.
func LastUsableClose(closes []float64) (float64, int, bool) {
	for idx := len(closes) - 1; idx >= 0; idx-- {
		if Usable(closes[idx]) {
			return closes[idx], idx, true
		}
	}

	return 0, -1, false
}

// PreviousUsableClose scans backwards from the bar before the provided index
// and returns the first usable close.
func PreviousUsableClose(closes []float64, before int) (float64, bool) {
	for idx := before - 1; idx >= 0; idx-- {
		if Usable(closes[idx]) {
			return closes[idx], true
		}
	}

	return 0, false
}

// FallbackPrice resolves a price field: the sample itself when usable, then
// the corresponding metadata field, then the last usable close. The order of
// this chain defines zero-change display on brand-new or illiquid symbols
// and must be preserved.
func FallbackPrice(sample float64, metaValue float64, lastClose float64) float64 {
	switch {
	case Usable(sample):
		return sample
	case metaValue != 0:
		return metaValue
	default:
		return lastClose
	}
}

// firstNonZero returns the first non-zero value from the provided values.
func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}

	return 0
}
