package shared

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
)

func TestISTTime(t *testing.T) {
	// Ensure conversion lands five and a half hours ahead of UTC.
	utc := time.Date(2024, 1, 10, 6, 0, 0, 0, time.UTC)
	ist := ISTTime(utc)
	assert.Equal(t, ist.Hour(), 11)
	assert.Equal(t, ist.Minute(), 30)
}

func TestIsMarketOpen(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{
			"weekday mid-session",
			time.Date(2024, 1, 10, 6, 0, 0, 0, time.UTC), // Wed 11:30 IST
			true,
		},
		{
			"weekday at the open",
			time.Date(2024, 1, 10, 3, 45, 0, 0, time.UTC), // Wed 09:15 IST
			true,
		},
		{
			"weekday at the close",
			time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC), // Wed 15:30 IST
			true,
		},
		{
			"weekday just after the close",
			time.Date(2024, 1, 10, 10, 1, 0, 0, time.UTC), // Wed 15:31 IST
			false,
		},
		{
			"weekday before the open",
			time.Date(2024, 1, 10, 2, 30, 0, 0, time.UTC), // Wed 08:00 IST
			false,
		},
		{
			"saturday",
			time.Date(2024, 1, 13, 6, 0, 0, 0, time.UTC),
			false,
		},
		{
			"sunday",
			time.Date(2024, 1, 14, 6, 0, 0, 0, time.UTC),
			false,
		},
	}

	for _, test := range tests {
		open := IsMarketOpen(test.now)
		if open != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, open)
		}
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name           string
		now            time.Time
		wantOpen       bool
		wantMessage    string
		wantNextStatus string
	}{
		{
			"open session",
			time.Date(2024, 1, 10, 6, 0, 0, 0, time.UTC),
			true,
			"Market Open",
			"Closes at 3:30 PM",
		},
		{
			"weekend",
			time.Date(2024, 1, 13, 6, 0, 0, 0, time.UTC),
			false,
			"Market Closed (Weekend)",
			"Opens Monday at 9:15 AM",
		},
		{
			"weekday before the open",
			time.Date(2024, 1, 10, 2, 30, 0, 0, time.UTC),
			false,
			"Market Closed",
			"Opens at 9:15 AM",
		},
		{
			"weekday after the close",
			time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
			false,
			"Market Closed",
			"Opens tomorrow at 9:15 AM",
		},
	}

	for _, test := range tests {
		status := Status(test.now)
		if status.IsOpen != test.wantOpen {
			t.Errorf("%s: expected open %v, got %v", test.name, test.wantOpen, status.IsOpen)
		}
		if status.Message != test.wantMessage {
			t.Errorf("%s: expected message %q, got %q", test.name, test.wantMessage, status.Message)
		}
		if status.NextStatus != test.wantNextStatus {
			t.Errorf("%s: expected next status %q, got %q", test.name, test.wantNextStatus, status.NextStatus)
		}
	}
}
