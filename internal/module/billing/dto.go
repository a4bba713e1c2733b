package billing

import "time"

// PlanResponse is a catalog entry as rendered on the pricing page.
type PlanResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	DurationMonths int      `json:"duration_months"`
	Cadence        string   `json:"cadence"`
	Features       []string `json:"features"`
	Pricing
}

// QuoteResponse is the order summary shown on the checkout page.
type QuoteResponse struct {
	PlanID         string `json:"plan_id"`
	PlanName       string `json:"plan_name"`
	DurationMonths int    `json:"duration_months"`
	RenewalDate    string `json:"renewal_date"`
	Cadence        string `json:"cadence"`
	Pricing
}

// SubscriptionResponse is the account view of a subscription.
type SubscriptionResponse struct {
	PlanID     string     `json:"plan_id"`
	PlanName   string     `json:"plan_name,omitempty"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	RenewsAt   time.Time  `json:"renews_at"`
	CanceledAt *time.Time `json:"canceled_at,omitempty"`
	Active     bool       `json:"active"`
}

func toPlanResponse(p *Plan) PlanResponse {
	return PlanResponse{
		ID:             p.ID,
		Name:           p.Name,
		DurationMonths: p.DurationMonths,
		Cadence:        CadenceLabel(p.DurationMonths),
		Features:       p.Features,
		Pricing:        PlanPricing(p),
	}
}

func toQuoteResponse(q *Quote) QuoteResponse {
	return QuoteResponse{
		PlanID:         q.Plan.ID,
		PlanName:       q.Plan.Name,
		DurationMonths: q.Plan.DurationMonths,
		RenewalDate:    q.RenewalDate.Format("2006-01-02"),
		Cadence:        q.Cadence,
		Pricing:        q.Pricing,
	}
}

func toSubscriptionResponse(s *Subscription) SubscriptionResponse {
	resp := SubscriptionResponse{
		PlanID:     s.PlanID,
		Status:     string(s.Status),
		StartedAt:  s.StartedAt,
		RenewsAt:   s.RenewsAt,
		CanceledAt: s.CanceledAt,
		Active:     s.IsActive(time.Now()),
	}
	if s.Plan != nil {
		resp.PlanName = s.Plan.Name
	}
	return resp
}
