package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mistcurrent/server/internal/module/billing"
	"github.com/mistcurrent/server/internal/shared/config"
	"github.com/mistcurrent/server/internal/shared/metrics"
	"github.com/mistcurrent/server/internal/shared/random"
)

// Service implements order operations.
type Service struct {
	repo    Repository
	billing *billing.Service
	sm      *StateMachine
	cfg     *config.BillingConfig
	logger  *zap.Logger
}

// NewService creates an order service.
func NewService(repo Repository, billingSvc *billing.Service, cfg *config.BillingConfig, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		billing: billingSvc,
		sm:      NewStateMachine(),
		cfg:     cfg,
		logger:  logger,
	}
}

// Create opens a pending order for one cycle of a plan. Pricing and the
// renewal date are taken from the billing quote at this instant and
// frozen on the order.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, planID, email string) (*Order, error) {
	now := time.Now()

	quote, err := s.billing.QuoteFor(ctx, planID, now)
	if err != nil {
		return nil, err
	}

	orderNo, err := random.OrderNo()
	if err != nil {
		return nil, err
	}

	expiresAt := now.Add(s.cfg.OrderExpiry)
	o := &Order{
		ID:                uuid.New(),
		OrderNo:           orderNo,
		UserID:            userID,
		Status:            StatusPending,
		PlanID:            quote.Plan.ID,
		PlanName:          quote.Plan.Name,
		DurationMonths:    quote.Plan.DurationMonths,
		MonthlyPriceCents: quote.Pricing.MonthlyPriceCents,
		DiscountPercent:   quote.Pricing.DiscountPercent,
		TotalCents:        quote.Pricing.TotalCents,
		Currency:          "USD",
		RenewalDate:       quote.RenewalDate,
		Email:             email,
		ExpiresAt:         &expiresAt,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_no", o.OrderNo),
		zap.String("user_id", userID.String()),
		zap.String("plan_id", o.PlanID),
		zap.Int64("total_cents", o.TotalCents),
	)
	metrics.OrdersCreatedTotal.WithLabelValues(o.PlanID).Inc()

	return o, nil
}

// Get returns an order scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// GetByOrderNo returns an order by its order number, scoped to its owner.
func (s *Service) GetByOrderNo(ctx context.Context, userID uuid.UUID, orderNo string) (*Order, error) {
	o, err := s.repo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// GetByPaymentIntentID returns the order attached to a payment intent.
// Used by webhook processing, so it is not owner-scoped.
func (s *Service) GetByPaymentIntentID(ctx context.Context, intentID string) (*Order, error) {
	return s.repo.GetByPaymentIntentID(ctx, intentID)
}

// LookupByOrderNo returns an order by order number without owner
// scoping. Webhook processing identifies orders by the order number
// carried in gateway metadata.
func (s *Service) LookupByOrderNo(ctx context.Context, orderNo string) (*Order, error) {
	return s.repo.GetByOrderNo(ctx, orderNo)
}

// List returns the user's order history, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Order, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// AttachPaymentIntent records the gateway intent created for an order.
func (s *Service) AttachPaymentIntent(ctx context.Context, o *Order, provider, intentID string) error {
	o.PaymentProvider = provider
	o.PaymentIntentID = intentID
	return s.repo.Update(ctx, o)
}

// MarkPaid transitions the order to paid.
func (s *Service) MarkPaid(ctx context.Context, o *Order, paidAt time.Time) error {
	if err := s.sm.Transition(o, StatusPaid); err != nil {
		return err
	}
	o.PaidAt = &paidAt
	if err := s.repo.Update(ctx, o); err != nil {
		return err
	}
	s.logger.Info("order paid", zap.String("order_no", o.OrderNo))
	return nil
}

// MarkFailed transitions the order to failed. A failed order can be
// retried, which moves it back to pending.
func (s *Service) MarkFailed(ctx context.Context, o *Order) error {
	if err := s.sm.Transition(o, StatusFailed); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return err
	}
	s.logger.Warn("order payment failed", zap.String("order_no", o.OrderNo))
	return nil
}

// Retry moves a failed order back to pending for another attempt.
func (s *Service) Retry(ctx context.Context, userID, orderID uuid.UUID) (*Order, error) {
	o, err := s.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.sm.Transition(o, StatusPending); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Cancel cancels a pending order.
func (s *Service) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*Order, error) {
	o, err := s.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.sm.Transition(o, StatusCanceled); err != nil {
		return nil, err
	}
	now := time.Now()
	o.CanceledAt = &now
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	s.logger.Info("order canceled", zap.String("order_no", o.OrderNo))
	return o, nil
}

// MarkCanceled cancels an order on behalf of the payment gateway, for
// example when the customer abandons the provider's checkout page.
func (s *Service) MarkCanceled(ctx context.Context, o *Order) error {
	if err := s.sm.Transition(o, StatusCanceled); err != nil {
		return err
	}
	now := time.Now()
	o.CanceledAt = &now
	if err := s.repo.Update(ctx, o); err != nil {
		return err
	}
	s.logger.Info("order canceled", zap.String("order_no", o.OrderNo))
	return nil
}

// MarkRefunded transitions a paid order to refunded.
func (s *Service) MarkRefunded(ctx context.Context, o *Order) error {
	if err := s.sm.Transition(o, StatusRefunded); err != nil {
		return err
	}
	now := time.Now()
	o.RefundedAt = &now
	if err := s.repo.Update(ctx, o); err != nil {
		return err
	}
	s.logger.Info("order refunded", zap.String("order_no", o.OrderNo))
	return nil
}
