package analysis

import (
	"math"
	"testing"

	"github.com/peterldowns/testy/assert"

	"watchdeck/shared"
)

func TestProjectionRequiresFiveBars(t *testing.T) {
	// Ensure four bars analyze fine but project nothing.
	series := seriesFixture([]float64{100, 102, 104, 106}, 2, nil)

	snap := Analyze("RELIANCE.NS", series, shared.OneMonth)
	if snap == nil {
		t.Fatal("expected a snapshot, got nil")
	}
	assert.Nil(t, snap.Projection)
}

func TestProjectionHorizonAndDates(t *testing.T) {
	series := seriesFixture([]float64{100, 102, 104, 106, 110, 112}, 2, nil)

	snap := Analyze("RELIANCE.NS", series, shared.OneMonth)
	if snap == nil || snap.Projection == nil {
		t.Fatal("expected a projection")
	}

	proj := snap.Projection
	assert.Equal(t, len(proj.Points), shared.OneMonth.ProjectionHorizon())

	// Ensure the monthly range steps forward by calendar days from the last bar.
	lastDate := series[len(series)-1].Timestamp
	for idx := range proj.Points {
		want := lastDate.AddDate(0, 0, idx+1)
		if !proj.Points[idx].Date.Equal(want) {
			t.Errorf("point %d: expected date %v, got %v", idx, want, proj.Points[idx].Date)
		}
	}

	assert.Equal(t, proj.NeutralTarget, snap.CurrentPrice)
}

func TestProjectionYearlySteppingByMonths(t *testing.T) {
	closes := make([]float64, 12)
	for idx := range closes {
		closes[idx] = 100 + float64(idx)
	}
	series := seriesFixture(closes, 2, nil)

	snap := Analyze("RELIANCE.NS", series, shared.OneYear)
	if snap == nil || snap.Projection == nil {
		t.Fatal("expected a projection")
	}

	proj := snap.Projection
	assert.Equal(t, len(proj.Points), shared.OneYear.ProjectionHorizon())

	lastDate := series[len(series)-1].Timestamp
	for idx := range proj.Points {
		want := lastDate.AddDate(0, idx+1, 0)
		if !proj.Points[idx].Date.Equal(want) {
			t.Errorf("point %d: expected date %v, got %v", idx, want, proj.Points[idx].Date)
		}
	}
}

func TestProjectionReflectsAtResistance(t *testing.T) {
	// A steep climb overshoots the resistance ceiling on the first step; the
	// overshoot reflects back by the bounce fraction instead of hard-clamping.
	closes := []float64{100, 120, 140, 160, 180, 200}
	series := seriesFixture(closes, 0.5, nil)

	snap := Analyze("RELIANCE.NS", series, shared.OneMonth)
	if snap == nil || snap.Projection == nil {
		t.Fatal("expected a projection")
	}

	trendSlope := (snap.CurrentPrice - closes[0]) / 10
	baseChange := trendSlope * 1.1
	volatilityAdjustment := snap.VolatilityPercent / 100 * 0.5

	step := 1
	volatilityFactor := math.Sin(float64(step)*0.5) * snap.VolatilityPercent * snap.CurrentPrice / 100 * volatilityAdjustment
	predicted := snap.CurrentPrice + baseChange + volatilityFactor

	ceiling := snap.Resistance * 1.05
	if predicted <= ceiling {
		t.Fatalf("expected the raw step past the ceiling %v, got %v", ceiling, predicted)
	}

	want := ceiling - (predicted-ceiling)*0.3
	got := snap.Projection.Points[0].Price
	assert.Equal(t, got, want)

	// Ensure the reflected price lands strictly below the ceiling rather than
	// clamping onto it.
	if got >= ceiling {
		t.Errorf("expected the reflected price %v below the ceiling %v", got, ceiling)
	}
}

func TestProjectionTargets(t *testing.T) {
	// Uptrending series: the bullish target scales with trend strength, the
	// bearish target is the conservative pullback.
	series := seriesFixture([]float64{100, 102, 104, 106, 110, 112}, 2, nil)

	snap := Analyze("RELIANCE.NS", series, shared.OneMonth)
	if snap == nil || snap.Projection == nil {
		t.Fatal("expected a projection")
	}

	proj := snap.Projection
	assert.Equal(t, proj.BullishTarget, snap.CurrentPrice*(1+snap.TrendStrength/100*0.5))
	assert.Equal(t, proj.BearishTarget, snap.CurrentPrice*0.98)

	// Downtrending series: the roles flip.
	series = seriesFixture([]float64{112, 110, 106, 104, 102, 100}, 2, nil)

	snap = Analyze("RELIANCE.NS", series, shared.OneMonth)
	if snap == nil || snap.Projection == nil {
		t.Fatal("expected a projection")
	}

	proj = snap.Projection
	assert.Equal(t, proj.BullishTarget, snap.CurrentPrice*1.02)
	assert.Equal(t, proj.BearishTarget, snap.CurrentPrice*(1-abs(snap.TotalChangePercent)/100*0.3))
}

func TestGradeConfidence(t *testing.T) {
	tests := []struct {
		name     string
		strength float64
		want     Confidence
	}{
		{
			"strong trend",
			12,
			HighConfidence,
		},
		{
			"moderate trend",
			7,
			MediumConfidence,
		},
		{
			"weak trend",
			3,
			LowConfidence,
		},
		{
			"boundary stays medium",
			10,
			MediumConfidence,
		},
	}

	for _, test := range tests {
		grade := gradeConfidence(test.strength)
		if grade != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, grade)
		}
	}
}

func TestConfidenceString(t *testing.T) {
	tests := []struct {
		name       string
		confidence Confidence
		want       string
	}{
		{
			"high",
			HighConfidence,
			"high",
		},
		{
			"medium",
			MediumConfidence,
			"medium",
		},
		{
			"low",
			LowConfidence,
			"low",
		},
	}

	for _, test := range tests {
		str := test.confidence.String()
		if str != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, str)
		}
	}
}
