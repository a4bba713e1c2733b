package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeConfig holds Stripe credentials.
type StripeConfig struct {
	APIKey        string
	WebhookSecret string
}

// StripeProvider implements Provider for Stripe, kept as an alternate
// card gateway behind the same checkout flow.
type StripeProvider struct {
	webhookSecret string
}

// NewStripeProvider creates a Stripe provider.
func NewStripeProvider(cfg *StripeConfig) *StripeProvider {
	stripe.Key = cfg.APIKey
	return &StripeProvider{webhookSecret: cfg.WebhookSecret}
}

// Name returns the provider name.
func (p *StripeProvider) Name() string {
	return "stripe"
}

// CreateIntent opens a Stripe payment intent.
func (p *StripeProvider) CreateIntent(ctx context.Context, req *CreateIntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		ReceiptEmail: stripe.String(req.CustomerEmail),
		Description:  stripe.String(req.Description),
	}
	params.Context = ctx

	params.Metadata = map[string]string{"order_no": req.OrderNo}
	for k, v := range req.Metadata {
		params.Metadata[k] = v
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return stripeIntent(pi), nil
}

// ConfirmIntent confirms a Stripe payment intent.
func (p *StripeProvider) ConfirmIntent(ctx context.Context, intentID string) (*Intent, error) {
	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx

	pi, err := paymentintent.Confirm(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("confirm payment intent: %w", err)
	}
	return stripeIntent(pi), nil
}

// GetIntent fetches a Stripe payment intent.
func (p *StripeProvider) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("get payment intent: %w", err)
	}
	return stripeIntent(pi), nil
}

// VerifyWebhookSignature validates the Stripe-Signature header.
func (p *StripeProvider) VerifyWebhookSignature(payload []byte, signature string) error {
	if _, err := webhook.ConstructEvent(payload, signature, p.webhookSecret); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}

// ParseWebhookEvent decodes a Stripe event into the normalized form.
func (p *StripeProvider) ParseWebhookEvent(payload []byte) (*Event, error) {
	var ev stripe.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	var obj struct {
		ID       string            `json:"id"`
		Status   string            `json:"status"`
		Amount   int64             `json:"amount"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(ev.Data.Raw, &obj); err != nil {
		return nil, fmt.Errorf("decode event object: %w", err)
	}

	return &Event{
		ID:       ev.ID,
		Type:     normalizeStripeEventType(string(ev.Type)),
		IntentID: obj.ID,
		OrderNo:  obj.Metadata["order_no"],
		Status:   obj.Status,
		Amount:   obj.Amount,
		Raw:      json.RawMessage(payload),
	}, nil
}

func normalizeStripeEventType(t string) string {
	switch t {
	case "payment_intent.succeeded":
		return EventPaymentSucceeded
	case "payment_intent.payment_failed":
		return EventPaymentFailed
	case "payment_intent.canceled":
		return EventPaymentCancelled
	default:
		return t
	}
}

func stripeIntent(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
}
