package booking

import "time"

const (
	discountPerDay  = 5
	maxDiscountDays = 7
)

// DaysUntil returns the number of whole calendar days from now to start,
// comparing midnight-truncated dates in now's location. A start later the
// same day yields 0.
func DaysUntil(now, start time.Time) int {
	start = start.In(now.Location())

	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, now.Location())

	return int(startDay.Sub(nowDay) / (24 * time.Hour))
}

// Discount computes the early-booking discount percentage for a session
// starting at start. The discount is 5% per full calendar day of lead time,
// capped at 7 days out; it applies only while the session has not started.
// A session later the same day earns nothing: the boundary is on date
// components, not elapsed hours.
func Discount(now, start time.Time) int {
	if !now.Before(start) {
		return 0
	}

	days := DaysUntil(now, start)
	if days > maxDiscountDays {
		return 0
	}

	return discountPerDay * days
}
