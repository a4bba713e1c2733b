package billing

import "math"

// Pricing is the price breakdown for one cycle of a plan.
type Pricing struct {
	MonthlyPriceCents  int64 `json:"monthly_price_cents"`
	OriginalPriceCents int64 `json:"original_price_cents"`
	DiscountPercent    int   `json:"discount_percent"`
	TotalCents         int64 `json:"total_cents"`
}

// PlanPricing computes the price breakdown for a plan. The discount is
// derived from the monthly and original prices; the cycle total comes
// from the catalog verbatim, since plans with free months charge less
// than monthly price times duration.
func PlanPricing(p *Plan) Pricing {
	discount := 0
	if p.OriginalMonthlyPriceCents > 0 {
		ratio := float64(p.MonthlyPriceCents) / float64(p.OriginalMonthlyPriceCents)
		discount = int(math.Round((1 - ratio) * 100))
	}

	total := p.TotalCents
	if total == 0 {
		total = p.MonthlyPriceCents * int64(p.DurationMonths)
	}

	return Pricing{
		MonthlyPriceCents:  p.MonthlyPriceCents,
		OriginalPriceCents: p.OriginalMonthlyPriceCents,
		DiscountPercent:    discount,
		TotalCents:         total,
	}
}
