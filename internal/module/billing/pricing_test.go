package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogPlan(t *testing.T, id string) *Plan {
	t.Helper()
	for _, p := range DefaultPlans() {
		if p.ID == id {
			return &p
		}
	}
	t.Fatalf("plan %q not in catalog", id)
	return nil
}

func TestPlanPricingDiscounts(t *testing.T) {
	tests := []struct {
		planID       string
		wantDiscount int
		wantTotal    int64
	}{
		{"1month", 0, 1199},
		{"6month", 42, 4194},
		{"12month", 50, 7188},
		{"2year", 82, 5256},
	}

	for _, tt := range tests {
		t.Run(tt.planID, func(t *testing.T) {
			pricing := PlanPricing(catalogPlan(t, tt.planID))
			assert.Equal(t, tt.wantDiscount, pricing.DiscountPercent)
			assert.Equal(t, tt.wantTotal, pricing.TotalCents)
		})
	}
}

func TestPlanPricingUsesLumpSumForFreeMontPlan(t *testing.T) {
	plan := catalogPlan(t, "2year")
	pricing := PlanPricing(plan)

	// 24 paid months, not 26: the stored total must be used verbatim.
	require.Equal(t, 26, plan.DurationMonths)
	assert.Equal(t, plan.MonthlyPriceCents*24, pricing.TotalCents)
	assert.Less(t, pricing.TotalCents, plan.MonthlyPriceCents*26)
}

func TestPlanPricingDerivesTotalWhenUnset(t *testing.T) {
	pricing := PlanPricing(&Plan{
		MonthlyPriceCents:         500,
		OriginalMonthlyPriceCents: 1000,
		DurationMonths:            6,
	})
	assert.Equal(t, int64(3000), pricing.TotalCents)
	assert.Equal(t, 50, pricing.DiscountPercent)
}

func TestPlanPricingZeroOriginalPrice(t *testing.T) {
	pricing := PlanPricing(&Plan{MonthlyPriceCents: 500, DurationMonths: 1})
	assert.Equal(t, 0, pricing.DiscountPercent)
}

func TestDefaultPlansCatalog(t *testing.T) {
	plans := DefaultPlans()
	require.Len(t, plans, 4)

	for _, p := range plans {
		assert.True(t, p.Active, p.ID)
		assert.GreaterOrEqual(t, p.DurationMonths, 1, p.ID)
		assert.NotEmpty(t, p.Features, p.ID)
	}
}
