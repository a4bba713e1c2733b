// Package provider contains the payment gateway integrations. Each
// gateway implements the Provider interface; the payment service picks
// one by name at checkout time.
package provider

import (
	"context"
	"encoding/json"
)

// Known webhook event types, normalized across gateways.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventPaymentCancelled = "payment_intent.cancelled"
)

// CreateIntentRequest carries everything a gateway needs to open a
// payment for one order. Amount is integer cents.
type CreateIntentRequest struct {
	Amount        int64
	Currency      string
	OrderNo       string
	CustomerEmail string
	CustomerName  string
	Description   string
	ReturnURL     string
	CancelURL     string
	Metadata      map[string]string
}

// Intent is a gateway payment intent. Card-based gateways return a
// ClientSecret for the browser SDK; redirect-based gateways return a
// RedirectURL instead.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
	RedirectURL  string
	Metadata     map[string]string
}

// Event is a normalized webhook notification.
type Event struct {
	ID       string
	Type     string
	IntentID string
	OrderNo  string
	Status   string
	Amount   int64
	Raw      json.RawMessage
}

// Provider is a payment gateway.
type Provider interface {
	// Name returns the provider name used in routes and persistence.
	Name() string

	// CreateIntent opens a payment for an order.
	CreateIntent(ctx context.Context, req *CreateIntentRequest) (*Intent, error)

	// ConfirmIntent confirms a previously created intent. Gateways with
	// a redirect flow return ErrNotSupported.
	ConfirmIntent(ctx context.Context, intentID string) (*Intent, error)

	// GetIntent fetches the current state of an intent.
	GetIntent(ctx context.Context, intentID string) (*Intent, error)

	// VerifyWebhookSignature checks the notification signature. Some
	// gateways verify inside ParseWebhookEvent and accept here.
	VerifyWebhookSignature(payload []byte, signature string) error

	// ParseWebhookEvent decodes a notification into a normalized Event.
	ParseWebhookEvent(payload []byte) (*Event, error)
}
