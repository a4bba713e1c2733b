package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRenewalDate(t *testing.T) {
	tests := []struct {
		name     string
		purchase time.Time
		months   int
		want     time.Time
	}{
		{"jan 31 plus one month clamps to leap feb", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"jan 31 plus one month clamps to non-leap feb", date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{"march 15 plus 26 months", date(2024, time.March, 15), 26, date(2026, time.May, 15)},
		{"dec 1 plus a year", date(2024, time.December, 1), 12, date(2025, time.December, 1)},
		{"mid-month plus one month", date(2024, time.June, 15), 1, date(2024, time.July, 15)},
		{"may 31 into 30-day june", date(2024, time.May, 31), 1, date(2024, time.June, 30)},
		{"year boundary", date(2024, time.November, 10), 2, date(2025, time.January, 10)},
		{"dec 31 plus two months clamps to feb", date(2023, time.December, 31), 2, date(2024, time.February, 29)},
		{"26 months across year boundary", date(2024, time.December, 31), 26, date(2027, time.February, 28)},
		{"six month cycle", date(2024, time.August, 31), 6, date(2025, time.February, 28)},
		{"feb 29 plus a year clamps", date(2024, time.February, 29), 12, date(2025, time.February, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenewalDate(tt.purchase, tt.months))
		})
	}
}

func TestRenewalDateNeverRollsForward(t *testing.T) {
	// A clamped renewal must stay in its target month, never normalize
	// into the month after.
	for day := 28; day <= 31; day++ {
		got := RenewalDate(date(2023, time.January, day), 1)
		assert.Equal(t, time.February, got.Month(), "day %d", day)
	}
}

func TestRenewalDateIsDeterministic(t *testing.T) {
	purchase := date(2024, time.March, 15)
	assert.Equal(t, RenewalDate(purchase, 26), RenewalDate(purchase, 26))
}

func TestCadenceLabel(t *testing.T) {
	tests := []struct {
		months int
		want   string
	}{
		{1, "monthly"},
		{6, "every 6 months"},
		{12, "annually"},
		{26, "every 26 months"},
		{3, "every 3 months"},
		{18, "every 18 months"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CadenceLabel(tt.months))
	}
}
