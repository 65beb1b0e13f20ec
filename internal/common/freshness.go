package common

import "time"

// Fact age windows, in days. A fact is recent when its end date is on or
// after today minus the window. Quarterly and balance sheet facts use the
// short window; fiscal-year series use the long one.
const (
	MaxFactAgeDays   = 395 // ~13 months
	MaxFYFactAgeDays = 730 // ~2 years
)

// DateLayout is the ISO date layout used for every fact end date.
const DateLayout = "2006-01-02"

// IsRecentDate reports whether an ISO end date falls within maxAgeDays of now.
// Unparseable or empty dates are never recent.
func IsRecentDate(endDate string, maxAgeDays int, now time.Time) bool {
	end, err := time.Parse(DateLayout, endDate)
	if err != nil {
		return false
	}
	y, m, d := now.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -maxAgeDays)
	return !end.Before(cutoff)
}

// FreshnessPriceSnapshot is how long a stored price is reused before refresh.
const FreshnessPriceSnapshot = 12 * time.Hour
