package quote

import (
	"math"
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestUsable(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  bool
	}{
		{
			"positive price",
			105.5,
			true,
		},
		{
			"zero",
			0,
			true,
		},
		{
			"null sample",
			math.NaN(),
			false,
		},
		{
			"positive infinity",
			math.Inf(1),
			false,
		},
		{
			"negative infinity",
			math.Inf(-1),
			false,
		},
	}

	for _, test := range tests {
		usable := Usable(test.value)
		if usable != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, usable)
		}
	}
}

func TestLastUsableClose(t *testing.T) {
	// Ensure the scan skips trailing nulls and lands on the rightmost
	// usable close.
	closes := []float64{100, 105, math.NaN()}
	v, idx, ok := LastUsableClose(closes)
	assert.True(t, ok)
	assert.Equal(t, v, 105.0)
	assert.Equal(t, idx, 1)

	// Ensure a fully null series reports no usable close.
	_, _, ok = LastUsableClose([]float64{math.NaN(), math.NaN()})
	assert.False(t, ok)

	// Ensure an empty series reports no usable close.
	_, _, ok = LastUsableClose(nil)
	assert.False(t, ok)
}

func TestPreviousUsableClose(t *testing.T) {
	closes := []float64{100, math.NaN(), 105}

	// Ensure nulls before the anchor are skipped.
	v, ok := PreviousUsableClose(closes, 2)
	assert.True(t, ok)
	assert.Equal(t, v, 100.0)

	// Ensure an anchor at the start has no previous close.
	_, ok = PreviousUsableClose(closes, 0)
	assert.False(t, ok)
}

func TestFallbackPrice(t *testing.T) {
	tests := []struct {
		name      string
		sample    float64
		metaValue float64
		lastClose float64
		want      float64
	}{
		{
			"usable sample wins",
			102,
			103,
			104,
			102,
		},
		{
			"null sample falls back to metadata",
			math.NaN(),
			103,
			104,
			103,
		},
		{
			"null sample and absent metadata fall back to the close",
			math.NaN(),
			0,
			104,
			104,
		},
	}

	for _, test := range tests {
		price := FallbackPrice(test.sample, test.metaValue, test.lastClose)
		if price != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, price)
		}
	}
}
