package pantry

import (
	"fmt"
	"time"
)

// ExpiryState classifies how close a pantry entry is to its expiry date.
type ExpiryState string

const (
	ExpiryExpired  ExpiryState = "expired"
	ExpiryCritical ExpiryState = "critical" // 3 days or less
	ExpiryWarning  ExpiryState = "warning"  // 7 days or less
	ExpiryOK       ExpiryState = "ok"
)

// ExpiryStatus classifies an expiry date relative to now. Entries without an
// expiry date are always OK. Day counts are calendar days, so an entry
// expiring later today is critical, not expired.
func ExpiryStatus(expiry *time.Time, now time.Time) ExpiryState {
	if expiry == nil {
		return ExpiryOK
	}
	days := DaysUntil(*expiry, now)
	switch {
	case days < 0:
		return ExpiryExpired
	case days <= 3:
		return ExpiryCritical
	case days <= 7:
		return ExpiryWarning
	}
	return ExpiryOK
}

// DaysUntil returns the number of whole calendar days from now until t,
// negative if t is in the past.
func DaysUntil(t, now time.Time) int {
	return int(startOfDay(t).Sub(startOfDay(now)).Hours() / 24)
}

// RelativeLabel renders a capture timestamp as the short human label the
// client shows ("Just now", "2 days ago"). Display strings are derived here
// at render time; the stored value is always a real timestamp.
func RelativeLabel(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour && sameDay(t, now):
		return t.Format("Today, 3:04 PM")
	}

	days := -DaysUntil(t, now)
	switch {
	case days <= 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 14:
		return "Last week"
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	}
	return t.Format("Jan 2, 2006")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
