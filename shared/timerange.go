package shared

import (
	"fmt"
	"time"
)

// Range represents the span of history requested from the data source.
type Range int

const (
	OneDay Range = iota
	FiveDay
	OneMonth
	ThreeMonth
	OneYear
)

// String stringifies the provided range using the data source's notation.
func (r Range) String() string {
	switch r {
	case OneDay:
		return "1d"
	case FiveDay:
		return "5d"
	case OneMonth:
		return "1mo"
	case ThreeMonth:
		return "3mo"
	case OneYear:
		return "1y"
	default:
		return "unknown"
	}
}

// ParseRange parses a range from its string notation.
func ParseRange(v string) (Range, error) {
	switch v {
	case "1d":
		return OneDay, nil
	case "5d":
		return FiveDay, nil
	case "1mo":
		return OneMonth, nil
	case "3mo":
		return ThreeMonth, nil
	case "1y":
		return OneYear, nil
	default:
		return 0, fmt.Errorf("unknown range provided: %s", v)
	}
}

// Interval returns the sampling interval the data source expects for the
// range. The mapping mirrors the source's sampling buckets and must not be
// altered: intraday ranges sample sub-daily, everything else daily.
func (r Range) Interval() string {
	switch r {
	case OneDay:
		return "15m"
	case FiveDay:
		return "1h"
	default:
		return "1d"
	}
}

// ProjectionHorizon returns the number of future steps projected for the range.
func (r Range) ProjectionHorizon() int {
	switch r {
	case OneMonth, ThreeMonth:
		return 5
	case OneYear:
		return 10
	case FiveDay:
		return 2
	default:
		return 1
	}
}

// StepDate advances the provided date by the given projection step. Short
// ranges step by calendar days, the yearly range by calendar months.
func (r Range) StepDate(date time.Time, step int) time.Time {
	switch r {
	case OneDay, FiveDay, OneMonth, ThreeMonth:
		return date.AddDate(0, 0, step)
	default:
		return date.AddDate(0, step, 0)
	}
}

// RangeForDate returns the smallest range whose span reaches back to the
// provided target date.
func RangeForDate(target time.Time, now time.Time) Range {
	days := int(now.Sub(target).Hours() / 24)
	switch {
	case days <= 5:
		return FiveDay
	case days <= 30:
		return OneMonth
	case days <= 90:
		return ThreeMonth
	default:
		return OneYear
	}
}
