package payment

import "github.com/mistcurrent/server/internal/module/payment/provider"

// CreateRequest opens a payment for an order.
type CreateRequest struct {
	OrderID  string `json:"order_id" binding:"required"`
	Provider string `json:"provider"`
}

// CreateResponse carries what the browser needs to complete payment:
// a client secret for card SDKs, or a redirect URL.
type CreateResponse struct {
	PaymentID    string `json:"payment_id"`
	Provider     string `json:"provider"`
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret,omitempty"`
	RedirectURL  string `json:"redirect_url,omitempty"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// StatusResponse reports the current payment state for polling.
type StatusResponse struct {
	PaymentID string `json:"payment_id"`
	Provider  string `json:"provider"`
	Status    string `json:"status"`
}

func toCreateResponse(p *Payment, intent *provider.Intent) CreateResponse {
	return CreateResponse{
		PaymentID:    p.ID.String(),
		Provider:     p.Provider,
		IntentID:     p.IntentID,
		ClientSecret: intent.ClientSecret,
		RedirectURL:  intent.RedirectURL,
		Status:       p.Status,
		Amount:       p.Amount,
		Currency:     p.Currency,
	}
}
