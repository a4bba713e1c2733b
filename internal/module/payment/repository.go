package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines payment data access.
type Repository interface {
	CreatePayment(ctx context.Context, p *Payment) error
	GetPaymentByIntentID(ctx context.Context, intentID string) (*Payment, error)
	GetLatestPaymentForOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error)
	UpdatePayment(ctx context.Context, p *Payment) error

	// RecordEvent inserts a webhook event, returning ErrDuplicateEvent
	// when the provider already delivered it.
	RecordEvent(ctx context.Context, e *WebhookEvent) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a payment repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePayment(ctx context.Context, p *Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (r *repository) GetPaymentByIntentID(ctx context.Context, intentID string) (*Payment, error) {
	var p Payment
	err := r.db.WithContext(ctx).First(&p, "intent_id = ?", intentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment by intent: %w", err)
	}
	return &p, nil
}

func (r *repository) GetLatestPaymentForOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error) {
	var p Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment for order: %w", err)
	}
	return &p, nil
}

func (r *repository) UpdatePayment(ctx context.Context, p *Payment) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}

func (r *repository) RecordEvent(ctx context.Context, e *WebhookEvent) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(e)
	if result.Error != nil {
		return fmt.Errorf("record webhook event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDuplicateEvent
	}
	return nil
}
