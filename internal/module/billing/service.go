package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mistcurrent/server/internal/shared/config"
	"github.com/mistcurrent/server/internal/shared/metrics"
)

// Service implements billing operations: catalog lookup, checkout
// quotes and subscription lifecycle.
type Service struct {
	repo   Repository
	cfg    *config.BillingConfig
	logger *zap.Logger
}

// NewService creates a billing service.
func NewService(repo Repository, cfg *config.BillingConfig, logger *zap.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, logger: logger}
}

// ListPlans returns the active plan catalog in display order.
func (s *Service) ListPlans(ctx context.Context) ([]*Plan, error) {
	return s.repo.ListActivePlans(ctx)
}

// ResolvePlan looks up a plan by id. Under lenient lookup (the default)
// an unknown id falls back to the configured default plan with a logged
// warning; under strict lookup it fails with ErrPlanNotFound.
func (s *Service) ResolvePlan(ctx context.Context, planID string) (*Plan, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, ErrPlanNotFound) {
		return nil, err
	}

	if s.cfg.StrictPlanLookup {
		return nil, ErrPlanNotFound
	}

	s.logger.Warn("unknown plan id, falling back to default plan",
		zap.String("plan_id", planID),
		zap.String("default_plan_id", s.cfg.DefaultPlanID),
	)
	return s.repo.GetPlan(ctx, s.cfg.DefaultPlanID)
}

// Quote is the order summary for one cycle of a plan purchased at a
// given instant.
type Quote struct {
	Plan        *Plan
	Pricing     Pricing
	RenewalDate time.Time
	Cadence     string
}

// QuoteFor resolves a plan and computes its checkout quote as of the
// purchase instant.
func (s *Service) QuoteFor(ctx context.Context, planID string, purchasedAt time.Time) (*Quote, error) {
	plan, err := s.ResolvePlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	return &Quote{
		Plan:        plan,
		Pricing:     PlanPricing(plan),
		RenewalDate: RenewalDate(purchasedAt, plan.DurationMonths),
		Cadence:     CadenceLabel(plan.DurationMonths),
	}, nil
}

// ActivateSubscription starts or extends the user's subscription after
// a successful payment. The renewal date is one full cycle after paidAt.
func (s *Service) ActivateSubscription(ctx context.Context, userID uuid.UUID, planID string, paidAt time.Time) (*Subscription, error) {
	plan, err := s.ResolvePlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	renewsAt := RenewalDate(paidAt, plan.DurationMonths)

	sub, err := s.repo.GetSubscriptionByUser(ctx, userID)
	switch {
	case err == nil:
		sub.PlanID = plan.ID
		sub.Plan = nil
		sub.Status = SubscriptionStatusActive
		sub.RenewsAt = renewsAt
		sub.CanceledAt = nil
		if err := s.repo.UpdateSubscription(ctx, sub); err != nil {
			return nil, err
		}
	case errors.Is(err, ErrSubscriptionNotFound):
		sub = &Subscription{
			ID:        uuid.New(),
			UserID:    userID,
			PlanID:    plan.ID,
			Status:    SubscriptionStatusActive,
			StartedAt: paidAt,
			RenewsAt:  renewsAt,
		}
		if err := s.repo.CreateSubscription(ctx, sub); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	s.logger.Info("subscription activated",
		zap.String("user_id", userID.String()),
		zap.String("plan_id", plan.ID),
		zap.Time("renews_at", renewsAt),
	)
	s.refreshActiveGauge(ctx)

	return sub, nil
}

// CancelSubscription marks the subscription canceled. Access continues
// until the current paid period ends.
func (s *Service) CancelSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	sub, err := s.repo.GetSubscriptionByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if sub.Status == SubscriptionStatusCanceled {
		return sub, nil
	}

	now := time.Now()
	sub.Status = SubscriptionStatusCanceled
	sub.CanceledAt = &now
	if err := s.repo.UpdateSubscription(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("subscription canceled",
		zap.String("user_id", userID.String()),
		zap.String("plan_id", sub.PlanID),
	)
	s.refreshActiveGauge(ctx)

	return sub, nil
}

// GetSubscription returns the user's subscription with its plan.
func (s *Service) GetSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	return s.repo.GetSubscriptionByUser(ctx, userID)
}

func (s *Service) refreshActiveGauge(ctx context.Context) {
	if count, err := s.repo.CountActiveSubscriptions(ctx); err == nil {
		metrics.SubscriptionsActiveTotal.Set(float64(count))
	}
}
