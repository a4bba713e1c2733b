// Package payment orchestrates the payment gateways: creating intents
// for orders, tracking payment records and processing webhooks.
package payment

import (
	"time"

	"github.com/google/uuid"
)

// Payment is one payment attempt against an order.
type Payment struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	UserID  uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`

	Provider     string `json:"provider" gorm:"not null"`
	IntentID     string `json:"intent_id" gorm:"uniqueIndex;not null"`
	ClientSecret string `json:"-"`

	Amount   int64  `json:"amount" gorm:"not null"`
	Currency string `json:"currency" gorm:"not null"`
	Status   string `json:"status" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Payment) TableName() string {
	return "payments"
}

// WebhookEvent records a processed gateway notification. The unique
// provider plus event id pair makes redelivered webhooks no-ops.
type WebhookEvent struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Provider  string    `json:"provider" gorm:"not null;uniqueIndex:idx_webhook_provider_event"`
	EventID   string    `json:"event_id" gorm:"not null;uniqueIndex:idx_webhook_provider_event"`
	EventType string    `json:"event_type" gorm:"not null"`
	Payload   []byte    `json:"-" gorm:"type:jsonb"`

	ProcessedAt time.Time `json:"processed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
