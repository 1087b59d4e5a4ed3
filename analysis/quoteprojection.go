package analysis

import (
	"math"

	"watchdeck/shared"
)

const (
	// quoteHorizonDays is the fixed horizon of a quote-based projection.
	quoteHorizonDays = 5
	// momentumDecayPerDay erodes the day-one momentum each later day.
	momentumDecayPerDay = 0.15
	// minVolatilityPercent and maxVolatilityPercent clamp the high-low
	// spread proxy.
	minVolatilityPercent = 2.0
	maxVolatilityPercent = 10.0
	// quoteVolatilityShare scales the sinusoidal perturbation.
	quoteVolatilityShare = 0.3
	// reflectFactor retains a fraction of the overshoot past the day
	// high/low boundaries.
	reflectFactor = 0.2
)

// QuotePoint represents one projected day of a quote-based projection.
type QuotePoint struct {
	Day           int     `json:"day"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"changePercent"`
}

// PricePeriod represents a maximal run of consecutive projected days moving
// in one direction.
type PricePeriod struct {
	Start      int     `json:"start"`
	End        int     `json:"end"`
	StartPrice float64 `json:"startPrice"`
	EndPrice   float64 `json:"endPrice"`
}

// Timing represents the entry/exit guidance scanned from a quote-based
// projection. Day zero is the present.
type Timing struct {
	PeakDay        int           `json:"peakDay"`
	DipDay         int           `json:"dipDay"`
	GrowthPeriods  []PricePeriod `json:"growthPeriods"`
	DeclinePeriods []PricePeriod `json:"declinePeriods"`
	EntryDay       int           `json:"entryDay"`
	ExitDay        int           `json:"exitDay"`
}

// QuoteProjection represents a five-day projection derived from a single
// live quote with no historical series.
type QuoteProjection struct {
	Points        []QuotePoint `json:"points"`
	BullishTarget float64      `json:"bullishTarget"`
	BearishTarget float64      `json:"bearishTarget"`
	Confidence    Confidence   `json:"confidence"`
	Upward        bool         `json:"isUpward"`
	Timing        Timing       `json:"timing"`
}

// ProjectQuote generates the quote-based projection. Quotes without a price
// or with a flat change carry no momentum to project and yield nil.
func ProjectQuote(q *shared.Quote) *QuoteProjection {
	if q.Price == 0 || q.ChangePercent == 0 {
		return nil
	}

	volatility := minVolatilityPercent
	if q.High != 0 && q.Low != 0 {
		spread := (q.High - q.Low) / q.Price * 100
		volatility = math.Max(minVolatilityPercent, math.Min(maxVolatilityPercent, spread))
	}

	ceiling := q.High * resistancePad
	floor := q.Low * supportPad

	dailyMomentum := q.ChangePercent / 100

	points := make([]QuotePoint, 0, quoteHorizonDays)
	predicted := q.Price
	for day := 1; day <= quoteHorizonDays; day++ {
		decay := 1 - float64(day-1)*momentumDecayPerDay
		baseChange := dailyMomentum * decay * q.Price
		volatilityFactor := math.Sin(float64(day)*sineStep) * volatility * q.Price / 100 * quoteVolatilityShare

		predicted = predicted + baseChange + volatilityFactor

		if q.High != 0 && predicted > ceiling {
			predicted = ceiling - (predicted-ceiling)*reflectFactor
		}
		if q.Low != 0 && predicted < floor {
			predicted = floor + (predicted-floor)*reflectFactor
		}

		points = append(points, QuotePoint{
			Day:           day,
			Price:         predicted,
			ChangePercent: (predicted - q.Price) / q.Price * 100,
		})
	}

	upward := q.ChangePercent > 0

	proj := &QuoteProjection{
		Points: points,
		Upward: upward,
		Timing: scanTiming(points, q.Price, upward),
	}

	switch {
	case upward:
		proj.BullishTarget = q.Price * (1 + abs(q.ChangePercent)/100*bullishTrendShare)
		proj.BearishTarget = q.Price * (1 - conservativeTargetPercent)
	default:
		proj.BullishTarget = q.Price * (1 + conservativeTargetPercent)
		proj.BearishTarget = q.Price * (1 - abs(q.ChangePercent)/100*bearishTrendShare)
	}

	switch {
	case abs(q.ChangePercent) > 5:
		proj.Confidence = HighConfidence
	case abs(q.ChangePercent) > 2:
		proj.Confidence = MediumConfidence
	default:
		proj.Confidence = LowConfidence
	}

	return proj
}

// scanTiming walks the projected days for the peak, the dip, the directional
// run-length periods, and an entry/exit recommendation by trend direction.
func scanTiming(points []QuotePoint, currentPrice float64, upward bool) Timing {
	timing := Timing{}

	maxPrice, minPrice := currentPrice, currentPrice
	for idx := range points {
		if points[idx].Price > maxPrice {
			maxPrice = points[idx].Price
			timing.PeakDay = points[idx].Day
		}
		if points[idx].Price < minPrice {
			minPrice = points[idx].Price
			timing.DipDay = points[idx].Day
		}

		if idx == 0 {
			continue
		}

		switch {
		case points[idx].Price > points[idx-1].Price:
			timing.GrowthPeriods = extendPeriod(timing.GrowthPeriods, idx, points)
		case points[idx].Price < points[idx-1].Price:
			timing.DeclinePeriods = extendPeriod(timing.DeclinePeriods, idx, points)
		}
	}

	switch {
	case upward:
		// Enter now, or at the first growth run if it starts later; exit at
		// the peak, or ride the full horizon when today is the peak.
		timing.EntryDay = 0
		if len(timing.GrowthPeriods) > 0 && timing.GrowthPeriods[0].Start > 0 {
			timing.EntryDay = timing.GrowthPeriods[0].Start
		}
		timing.ExitDay = timing.PeakDay
		if timing.ExitDay == 0 {
			timing.ExitDay = quoteHorizonDays
		}
	default:
		// Wait for the dip, then exit after the recovery window.
		timing.EntryDay = timing.DipDay
		if timing.EntryDay == 0 {
			timing.EntryDay = 2
		}
		timing.ExitDay = quoteHorizonDays
	}

	return timing
}

// extendPeriod extends the trailing period when the run is contiguous, or
// opens a new one.
func extendPeriod(periods []PricePeriod, idx int, points []QuotePoint) []PricePeriod {
	if len(periods) > 0 && periods[len(periods)-1].End == idx-1 {
		periods[len(periods)-1].End = idx
		periods[len(periods)-1].EndPrice = points[idx].Price
		return periods
	}

	return append(periods, PricePeriod{
		Start:      idx,
		End:        idx,
		StartPrice: points[idx-1].Price,
		EndPrice:   points[idx].Price,
	})
}
