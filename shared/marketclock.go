package shared

import "time"

// NSE/BSE regular session: Monday to Friday, 09:15 to 15:30 IST, both
// endpoints inclusive. India does not observe DST, so a fixed offset is used
// rather than the timezone database.
var istZone = time.FixedZone("IST", 5*60*60+30*60)

const (
	marketOpenMinute  = 9*60 + 15
	marketCloseMinute = 15*60 + 30
)

// MarketStatus represents the human-readable market state.
type MarketStatus struct {
	IsOpen     bool   `json:"isOpen"`
	Message    string `json:"message"`
	NextStatus string `json:"nextStatus"`
}

// ISTTime converts the provided time to Indian Standard Time.
func ISTTime(now time.Time) time.Time {
	return now.In(istZone)
}

// IsMarketOpen reports whether the market is in its regular session at the
// provided instant.
func IsMarketOpen(now time.Time) bool {
	ist := ISTTime(now)

	switch ist.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	minute := ist.Hour()*60 + ist.Minute()
	return minute >= marketOpenMinute && minute <= marketCloseMinute
}

// Status returns the market state with display messages for the provided
// instant.
func Status(now time.Time) MarketStatus {
	if IsMarketOpen(now) {
		return MarketStatus{
			IsOpen:     true,
			Message:    "Market Open",
			NextStatus: "Closes at 3:30 PM",
		}
	}

	ist := ISTTime(now)
	weekday := ist.Weekday()
	minute := ist.Hour()*60 + ist.Minute()

	status := MarketStatus{Message: "Market Closed"}
	switch {
	case weekday == time.Saturday || weekday == time.Sunday:
		status.Message = "Market Closed (Weekend)"
		status.NextStatus = "Opens Monday at 9:15 AM"
	case minute < marketOpenMinute:
		status.NextStatus = "Opens at 9:15 AM"
	default:
		status.NextStatus = "Opens tomorrow at 9:15 AM"
	}

	return status
}
