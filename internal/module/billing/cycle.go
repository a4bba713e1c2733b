package billing

import (
	"fmt"
	"time"
)

// RenewalDate returns the date exactly months calendar months after
// purchase, clamped to the last day of the target month when the
// purchase day does not exist there (Jan 31 + 1 month = Feb 28/29).
//
// The clamp is computed explicitly instead of relying on time.AddDate,
// which normalizes overflow by rolling into the following month.
func RenewalDate(purchase time.Time, months int) time.Time {
	y0, m0, d0 := purchase.Date()

	totalMonths := int(m0) - 1 + months
	yr := y0 + totalMonths/12
	mr := time.Month(totalMonths%12 + 1)

	// Day 0 of the following month is the last day of the target month.
	lastDay := time.Date(yr, mr+1, 0, 0, 0, 0, 0, purchase.Location()).Day()
	day := d0
	if day > lastDay {
		day = lastDay
	}

	return time.Date(yr, mr, day, 0, 0, 0, 0, purchase.Location())
}

// CadenceLabel describes how often a plan with the given cycle length
// renews.
func CadenceLabel(months int) string {
	switch months {
	case 1:
		return "monthly"
	case 6:
		return "every 6 months"
	case 12:
		return "annually"
	case 26:
		return "every 26 months"
	default:
		return fmt.Sprintf("every %d months", months)
	}
}
