package order

import "time"

// CreateRequest opens a new order for a plan.
type CreateRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
}

// Response is an order as shown in checkout and account history.
type Response struct {
	ID                string     `json:"id"`
	OrderNo           string     `json:"order_no"`
	Status            string     `json:"status"`
	PlanID            string     `json:"plan_id"`
	PlanName          string     `json:"plan_name"`
	DurationMonths    int        `json:"duration_months"`
	MonthlyPriceCents int64      `json:"monthly_price_cents"`
	DiscountPercent   int        `json:"discount_percent"`
	TotalCents        int64      `json:"total_cents"`
	Currency          string     `json:"currency"`
	RenewalDate       string     `json:"renewal_date"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ListResponse is a page of order history.
type ListResponse struct {
	Orders []Response `json:"orders"`
	Total  int64      `json:"total"`
}

func toResponse(o *Order) Response {
	return Response{
		ID:                o.ID.String(),
		OrderNo:           o.OrderNo,
		Status:            string(o.Status),
		PlanID:            o.PlanID,
		PlanName:          o.PlanName,
		DurationMonths:    o.DurationMonths,
		MonthlyPriceCents: o.MonthlyPriceCents,
		DiscountPercent:   o.DiscountPercent,
		TotalCents:        o.TotalCents,
		Currency:          o.Currency,
		RenewalDate:       o.RenewalDate.Format("2006-01-02"),
		PaidAt:            o.PaidAt,
		ExpiresAt:         o.ExpiresAt,
		CreatedAt:         o.CreatedAt,
	}
}
