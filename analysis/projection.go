package analysis

import (
	"math"
	"time"

	"watchdeck/shared"
)

// The projection formulas are deliberate deterministic heuristics, not a
// statistical model. Downstreams depend on their exact output; do not
// substitute a stochastic or "corrected" variant.

const (
	// minProjectionBars is the fewest bars a series projection needs.
	minProjectionBars = 5
	// slopeWindow is the bar count over which the trend slope is measured.
	slopeWindow = 10
	// momentumAccel scales the slope when recent momentum is positive.
	momentumAccel = 1.1
	// momentumDecel scales the slope when recent momentum is non-positive.
	momentumDecel = 0.9
	// sineStep spaces the sinusoidal perturbation across projection steps.
	sineStep = 0.5
	// volatilityDampen halves the volatility contribution.
	volatilityDampen = 0.5
	// supportPad and resistancePad place the reflection boundaries just
	// outside the observed extremes.
	supportPad    = 0.95
	resistancePad = 1.05
	// bounceFactor retains a fraction of the overshoot past a boundary
	// instead of hard-clamping to it.
	bounceFactor = 0.3

	// bullishTrendShare and bearishTrendShare convert trend strength into
	// target distances.
	bullishTrendShare = 0.5
	bearishTrendShare = 0.3
	// conservativeTargetPercent is the target move against the trend.
	conservativeTargetPercent = 0.02

	// highConfidencePercent and mediumConfidencePercent grade trend
	// strength into confidence.
	highConfidencePercent   = 10.0
	mediumConfidencePercent = 5.0
)

// Confidence represents the grade of a projection.
type Confidence int

const (
	LowConfidence Confidence = iota
	MediumConfidence
	HighConfidence
)

// String stringifies the provided confidence.
func (c Confidence) String() string {
	switch c {
	case HighConfidence:
		return "high"
	case MediumConfidence:
		return "medium"
	default:
		return "low"
	}
}

// MarshalText stringifies the confidence for serialization.
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ProjectionPoint represents one projected future price.
type ProjectionPoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// ProjectionSet represents a short-horizon price projection with target
// levels. It is recomputed with every analytics snapshot and never persisted.
type ProjectionSet struct {
	Points        []ProjectionPoint `json:"points"`
	BullishTarget float64           `json:"bullishTarget"`
	BearishTarget float64           `json:"bearishTarget"`
	NeutralTarget float64           `json:"neutralTarget"`
	Confidence    Confidence        `json:"confidence"`
}

// projectSeries generates the multi-step projection for a series. Fewer than
// five bars yields no projection.
func projectSeries(series shared.Series, rng shared.Range, snap *Snapshot) *ProjectionSet {
	closes := series.Closes()
	if len(closes) < minProjectionBars {
		return nil
	}

	horizon := rng.ProjectionHorizon()
	currentPrice := snap.CurrentPrice
	lastDate := series[len(series)-1].Timestamp

	anchor := len(closes) - slopeWindow
	if anchor < 0 {
		anchor = 0
	}
	trendSlope := (currentPrice - closes[anchor]) / slopeWindow

	recentChange := (closes[len(closes)-1] - closes[len(closes)-minProjectionBars]) / minProjectionBars
	momentumFactor := momentumDecel
	if recentChange > 0 {
		momentumFactor = momentumAccel
	}

	volatilityAdjustment := snap.VolatilityPercent / 100 * volatilityDampen

	supportFloor := snap.Support * supportPad
	resistanceCeil := snap.Resistance * resistancePad

	points := make([]ProjectionPoint, 0, horizon)
	predicted := currentPrice
	for step := 1; step <= horizon; step++ {
		baseChange := trendSlope * momentumFactor
		volatilityFactor := math.Sin(float64(step)*sineStep) * snap.VolatilityPercent * currentPrice / 100 * volatilityAdjustment

		predicted = predicted + baseChange + volatilityFactor

		if predicted < supportFloor {
			predicted = supportFloor + (predicted-supportFloor)*bounceFactor
		}
		if predicted > resistanceCeil {
			predicted = resistanceCeil - (predicted-resistanceCeil)*bounceFactor
		}

		points = append(points, ProjectionPoint{
			Date:  rng.StepDate(lastDate, step),
			Price: predicted,
		})
	}

	set := &ProjectionSet{
		Points:        points,
		NeutralTarget: currentPrice,
		Confidence:    gradeConfidence(snap.TrendStrength),
	}

	switch {
	case snap.Uptrend:
		set.BullishTarget = currentPrice * (1 + snap.TrendStrength/100*bullishTrendShare)
		set.BearishTarget = currentPrice * (1 - conservativeTargetPercent)
	default:
		set.BullishTarget = currentPrice * (1 + conservativeTargetPercent)
		set.BearishTarget = currentPrice * (1 - abs(snap.TotalChangePercent)/100*bearishTrendShare)
	}

	return set
}

// gradeConfidence grades a strength percentage into a confidence level.
func gradeConfidence(strength float64) Confidence {
	switch {
	case strength > highConfidencePercent:
		return HighConfidence
	case strength > mediumConfidencePercent:
		return MediumConfidence
	default:
		return LowConfidence
	}
}
