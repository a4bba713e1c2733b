package billing

import "github.com/lib/pq"

// DefaultPlans is the plan catalog seeded on startup. Prices are cents.
// Discount percentages are not stored, they derive from the monthly and
// original prices (see PlanPricing).
func DefaultPlans() []Plan {
	return []Plan{
		{
			ID:                        "1month",
			Name:                      "1 Month Plan",
			MonthlyPriceCents:         1199,
			OriginalMonthlyPriceCents: 1199,
			DurationMonths:            1,
			TotalCents:                1199,
			Features: pq.StringArray{
				"Industry-leading Network",
				"Basic Traffic Optimization",
				"Standard Speed Boost",
				"24/7 Customer Support",
			},
			Active:       true,
			DisplayOrder: 1,
		},
		{
			ID:                        "6month",
			Name:                      "6 Month Plan",
			MonthlyPriceCents:         699,
			OriginalMonthlyPriceCents: 1199,
			DurationMonths:            6,
			TotalCents:                4194,
			Features: pq.StringArray{
				"Industry-leading Network",
				"Advanced Traffic Optimization",
				"Priority Speed Acceleration",
				"Multi-device Support",
				"Premium Customer Support",
			},
			Active:       true,
			DisplayOrder: 2,
		},
		{
			ID:                        "12month",
			Name:                      "12 Month Plan",
			MonthlyPriceCents:         599,
			OriginalMonthlyPriceCents: 1199,
			DurationMonths:            12,
			TotalCents:                7188,
			Features: pq.StringArray{
				"Industry-leading Network",
				"Advanced Traffic Optimization",
				"Priority Speed Acceleration",
				"Multi-device Support",
				"Premium Customer Support",
			},
			Active:       true,
			DisplayOrder: 3,
		},
		{
			// 24 paid months plus 2 free, so the cycle spans 26 calendar
			// months while the total charges only 24.
			ID:                        "2year",
			Name:                      "2 Years + 2 Months Free",
			MonthlyPriceCents:         219,
			OriginalMonthlyPriceCents: 1199,
			DurationMonths:            26,
			TotalCents:                5256,
			Features: pq.StringArray{
				"Industry-leading Network",
				"Premium Traffic Optimization",
				"Maximum Speed Boost",
				"Unlimited Device Support",
				"Priority Customer Support",
				"Advanced Analytics Dashboard",
			},
			Active:       true,
			DisplayOrder: 4,
		},
	}
}
