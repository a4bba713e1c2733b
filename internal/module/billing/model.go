// Package billing owns the plan catalog, the billing-cycle calculator
// and subscriptions: what a plan costs, when it renews, and how the
// renewal cadence is described to the customer.
package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Plan represents a subscription tier. Plans are static catalog entries
// seeded at startup and never mutated by request handlers.
type Plan struct {
	ID   string `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null"`

	// Prices are integer cents. OriginalMonthlyPriceCents is the
	// pre-discount comparison price shown struck through in the UI.
	MonthlyPriceCents         int64 `json:"monthly_price_cents" gorm:"not null"`
	OriginalMonthlyPriceCents int64 `json:"original_monthly_price_cents" gorm:"not null"`

	// DurationMonths is the number of calendar months a cycle spans.
	// The two-year plan spans 26 (24 paid plus 2 free).
	DurationMonths int `json:"duration_months" gorm:"not null"`

	// TotalCents is the amount charged for one full cycle. It is stored
	// verbatim rather than derived because plans with free months do not
	// equal MonthlyPriceCents times DurationMonths.
	TotalCents int64 `json:"total_cents" gorm:"not null"`

	Features     pq.StringArray `json:"features" gorm:"type:text[]"`
	Active       bool           `json:"active" gorm:"default:true"`
	DisplayOrder int            `json:"display_order" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Plan) TableName() string {
	return "plans"
}

// SubscriptionStatus represents the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusExpired  SubscriptionStatus = "expired"
)

// Subscription ties a user to a plan and tracks the renewal date
// computed by the billing-cycle calculator.
type Subscription struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	PlanID string    `json:"plan_id" gorm:"not null"`
	Plan   *Plan     `json:"plan,omitempty" gorm:"foreignKey:PlanID"`

	Status     SubscriptionStatus `json:"status" gorm:"not null;default:'active'"`
	StartedAt  time.Time          `json:"started_at" gorm:"not null"`
	RenewsAt   time.Time          `json:"renews_at" gorm:"not null"`
	CanceledAt *time.Time         `json:"canceled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Subscription) TableName() string {
	return "subscriptions"
}

// IsActive reports whether the subscription grants access at time t.
// A canceled subscription keeps access until the paid period runs out.
func (s *Subscription) IsActive(t time.Time) bool {
	switch s.Status {
	case SubscriptionStatusActive:
		return true
	case SubscriptionStatusCanceled:
		return t.Before(s.RenewsAt)
	default:
		return false
	}
}
