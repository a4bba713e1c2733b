// Package order manages purchase orders: creation from a checkout
// quote, the payment state machine and the account order history.
package order

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the status of an order.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusCanceled Status = "canceled"
	StatusRefunded Status = "refunded"
	StatusFailed   Status = "failed"
)

// Order is a purchase of one plan cycle. Amounts are integer cents and
// frozen at creation time from the billing quote, so later catalog
// changes never alter an existing order.
type Order struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrderNo string    `json:"order_no" gorm:"uniqueIndex;not null"`
	UserID  uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Status  Status    `json:"status" gorm:"not null;default:pending"`

	PlanID         string `json:"plan_id" gorm:"not null"`
	PlanName       string `json:"plan_name"`
	DurationMonths int    `json:"duration_months" gorm:"not null"`

	MonthlyPriceCents int64  `json:"monthly_price_cents"`
	DiscountPercent   int    `json:"discount_percent"`
	TotalCents        int64  `json:"total_cents" gorm:"not null"`
	Currency          string `json:"currency" gorm:"default:USD"`

	// RenewalDate is the computed next renewal for this cycle, captured
	// at checkout so the order summary never drifts from what was shown.
	RenewalDate time.Time `json:"renewal_date"`

	Email string `json:"email"`

	PaymentProvider string `json:"payment_provider,omitempty"`
	PaymentIntentID string `json:"-" gorm:"index"`

	PaidAt     *time.Time `json:"paid_at,omitempty"`
	CanceledAt *time.Time `json:"canceled_at,omitempty"`
	RefundedAt *time.Time `json:"refunded_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Order) TableName() string {
	return "orders"
}

// IsPending returns true if the order awaits payment.
func (o *Order) IsPending() bool {
	return o.Status == StatusPending
}

// IsPaid returns true if the order has been paid.
func (o *Order) IsPaid() bool {
	return o.Status == StatusPaid
}

// IsExpired returns true if the payment window has passed.
func (o *Order) IsExpired() bool {
	return o.ExpiresAt != nil && time.Now().After(*o.ExpiresAt)
}
