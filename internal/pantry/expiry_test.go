package pantry

import (
	"testing"
	"time"
)

var now = time.Date(2025, 8, 28, 12, 0, 0, 0, time.UTC)

func datePtr(t time.Time) *time.Time { return &t }

func TestExpiryStatus(t *testing.T) {
	tests := []struct {
		name   string
		expiry *time.Time
		want   ExpiryState
	}{
		{"no expiry", nil, ExpiryOK},
		{"yesterday", datePtr(now.AddDate(0, 0, -1)), ExpiryExpired},
		{"last month", datePtr(now.AddDate(0, -1, 0)), ExpiryExpired},
		{"today", datePtr(now), ExpiryCritical},
		{"in 3 days", datePtr(now.AddDate(0, 0, 3)), ExpiryCritical},
		{"in 4 days", datePtr(now.AddDate(0, 0, 4)), ExpiryWarning},
		{"in 7 days", datePtr(now.AddDate(0, 0, 7)), ExpiryWarning},
		{"in 8 days", datePtr(now.AddDate(0, 0, 8)), ExpiryOK},
		{"next year", datePtr(now.AddDate(1, 0, 0)), ExpiryOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpiryStatus(tt.expiry, now); got != tt.want {
				t.Errorf("ExpiryStatus = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDaysUntilIgnoresTimeOfDay(t *testing.T) {
	// 11 PM today to 1 AM tomorrow is still one calendar day.
	late := time.Date(2025, 8, 28, 23, 0, 0, 0, time.UTC)
	early := time.Date(2025, 8, 29, 1, 0, 0, 0, time.UTC)
	if d := DaysUntil(early, late); d != 1 {
		t.Errorf("DaysUntil = %d, want 1", d)
	}
}

func TestRelativeLabel(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"just now", now.Add(-30 * time.Second), "Just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"earlier today", now.Add(-3 * time.Hour), "Today, 9:00 AM"},
		{"yesterday", now.AddDate(0, 0, -1), "Yesterday"},
		{"two days", now.AddDate(0, 0, -2), "2 days ago"},
		{"last week", now.AddDate(0, 0, -8), "Last week"},
		{"two weeks", now.AddDate(0, 0, -15), "2 weeks ago"},
		{"old", now.AddDate(0, -2, 0), "Jun 28, 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelativeLabel(tt.at, now); got != tt.want {
				t.Errorf("RelativeLabel = %q, want %q", got, tt.want)
			}
		})
	}
}
