package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mistcurrent/server/internal/module/billing"
	"github.com/mistcurrent/server/internal/module/order"
	"github.com/mistcurrent/server/internal/module/payment/provider"
	"github.com/mistcurrent/server/internal/shared/metrics"
)

// Provisioner prepares VPN access once a payment lands. Implemented by
// the vpn module and injected to keep the dependency one-directional.
type Provisioner interface {
	Provision(ctx context.Context, userID uuid.UUID, planID string) error
}

// Service orchestrates payments across gateways.
type Service struct {
	repo        Repository
	registry    *provider.Registry
	orders      *order.Service
	billing     *billing.Service
	provisioner Provisioner
	baseURL     string
	logger      *zap.Logger
}

// NewService creates a payment service.
func NewService(
	repo Repository,
	registry *provider.Registry,
	orders *order.Service,
	billingSvc *billing.Service,
	provisioner Provisioner,
	baseURL string,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:        repo,
		registry:    registry,
		orders:      orders,
		billing:     billingSvc,
		provisioner: provisioner,
		baseURL:     baseURL,
		logger:      logger,
	}
}

// Create opens a payment intent for a pending order.
func (s *Service) Create(ctx context.Context, userID, orderID uuid.UUID, providerName string) (*Payment, *provider.Intent, error) {
	o, err := s.orders.Get(ctx, userID, orderID)
	if err != nil {
		return nil, nil, err
	}
	if !o.IsPending() {
		return nil, nil, fmt.Errorf("%w: status %s", ErrOrderNotPayable, o.Status)
	}
	if o.IsExpired() {
		return nil, nil, fmt.Errorf("%w: payment window passed", ErrOrderNotPayable)
	}

	prov, err := s.registry.Get(providerName)
	if err != nil {
		return nil, nil, err
	}

	intent, err := prov.CreateIntent(ctx, &provider.CreateIntentRequest{
		Amount:        o.TotalCents,
		Currency:      o.Currency,
		OrderNo:       o.OrderNo,
		CustomerEmail: o.Email,
		Description:   "MistCurrent VPN - " + o.PlanName,
		ReturnURL:     fmt.Sprintf("%s/payment/success?order_no=%s", s.baseURL, o.OrderNo),
		CancelURL:     fmt.Sprintf("%s/checkout?plan=%s", s.baseURL, o.PlanID),
	})
	if err != nil {
		metrics.PaymentAttemptsTotal.WithLabelValues(prov.Name(), "error").Inc()
		return nil, nil, err
	}
	metrics.PaymentAttemptsTotal.WithLabelValues(prov.Name(), "created").Inc()

	p := &Payment{
		ID:           uuid.New(),
		OrderID:      o.ID,
		UserID:       userID,
		Provider:     prov.Name(),
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       intent.Amount,
		Currency:     intent.Currency,
		Status:       intent.Status,
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, nil, err
	}
	if err := s.orders.AttachPaymentIntent(ctx, o, prov.Name(), intent.ID); err != nil {
		return nil, nil, err
	}

	s.logger.Info("payment intent created",
		zap.String("order_no", o.OrderNo),
		zap.String("provider", prov.Name()),
		zap.String("intent_id", intent.ID),
	)

	return p, intent, nil
}

// Confirm confirms the order's latest payment intent with the gateway.
func (s *Service) Confirm(ctx context.Context, userID, orderID uuid.UUID) (*Payment, error) {
	o, err := s.orders.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.GetLatestPaymentForOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	prov, err := s.registry.Get(p.Provider)
	if err != nil {
		return nil, err
	}

	intent, err := prov.ConfirmIntent(ctx, p.IntentID)
	if err != nil {
		return nil, err
	}

	p.Status = intent.Status
	if err := s.repo.UpdatePayment(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Status fetches the gateway's view of the order's latest payment and
// syncs the local record.
func (s *Service) Status(ctx context.Context, userID, orderID uuid.UUID) (*Payment, error) {
	o, err := s.orders.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.GetLatestPaymentForOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	prov, err := s.registry.Get(p.Provider)
	if err != nil {
		return nil, err
	}

	intent, err := prov.GetIntent(ctx, p.IntentID)
	if err != nil {
		return nil, err
	}

	if intent.Status != p.Status {
		p.Status = intent.Status
		if err := s.repo.UpdatePayment(ctx, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// HandleWebhook verifies, deduplicates and applies a gateway
// notification. Redelivered events and already-applied transitions are
// acknowledged without side effects.
func (s *Service) HandleWebhook(ctx context.Context, providerName string, payload []byte, signature string) error {
	prov, err := s.registry.Get(providerName)
	if err != nil {
		return err
	}

	if err := prov.VerifyWebhookSignature(payload, signature); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(providerName, "unknown", "rejected").Inc()
		return err
	}

	ev, err := prov.ParseWebhookEvent(payload)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(providerName, "unknown", "malformed").Inc()
		return err
	}

	record := &WebhookEvent{
		ID:          uuid.New(),
		Provider:    providerName,
		EventID:     ev.ID,
		EventType:   ev.Type,
		Payload:     ev.Raw,
		ProcessedAt: time.Now(),
	}
	if err := s.repo.RecordEvent(ctx, record); err != nil {
		if errors.Is(err, ErrDuplicateEvent) {
			s.logger.Info("duplicate webhook event dropped",
				zap.String("provider", providerName),
				zap.String("event_id", ev.ID),
			)
			metrics.WebhookEventsTotal.WithLabelValues(providerName, ev.Type, "duplicate").Inc()
			return nil
		}
		return err
	}

	if err := s.applyEvent(ctx, ev); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(providerName, ev.Type, "failed").Inc()
		return err
	}

	metrics.WebhookEventsTotal.WithLabelValues(providerName, ev.Type, "processed").Inc()
	return nil
}

func (s *Service) applyEvent(ctx context.Context, ev *provider.Event) error {
	o, err := s.findOrder(ctx, ev)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			// Not ours (e.g. an event from another environment); ack it.
			s.logger.Warn("webhook event for unknown order",
				zap.String("event_id", ev.ID),
				zap.String("order_no", ev.OrderNo),
			)
			return nil
		}
		return err
	}

	switch ev.Type {
	case provider.EventPaymentSucceeded:
		return s.handleSucceeded(ctx, o, ev)
	case provider.EventPaymentFailed:
		return ignoreSettled(s.orders.MarkFailed(ctx, o))
	case provider.EventPaymentCancelled:
		return ignoreSettled(s.orders.MarkCanceled(ctx, o))
	default:
		s.logger.Debug("unhandled webhook event type", zap.String("type", ev.Type))
		return nil
	}
}

func (s *Service) handleSucceeded(ctx context.Context, o *order.Order, ev *provider.Event) error {
	paidAt := time.Now()
	if err := s.orders.MarkPaid(ctx, o, paidAt); err != nil {
		// An already paid order means this event was applied before.
		if errors.Is(err, order.ErrInvalidTransition) {
			return nil
		}
		return err
	}

	if p, err := s.repo.GetPaymentByIntentID(ctx, ev.IntentID); err == nil {
		p.Status = "succeeded"
		if err := s.repo.UpdatePayment(ctx, p); err != nil {
			s.logger.Error("update payment record", zap.Error(err))
		}
	}

	if _, err := s.billing.ActivateSubscription(ctx, o.UserID, o.PlanID, paidAt); err != nil {
		return fmt.Errorf("activate subscription: %w", err)
	}

	if s.provisioner != nil {
		if err := s.provisioner.Provision(ctx, o.UserID, o.PlanID); err != nil {
			// The subscription is live; provisioning retries out of band.
			s.logger.Error("vpn provisioning failed",
				zap.String("order_no", o.OrderNo),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (s *Service) findOrder(ctx context.Context, ev *provider.Event) (*order.Order, error) {
	if ev.OrderNo != "" {
		if o, err := s.orders.LookupByOrderNo(ctx, ev.OrderNo); err == nil {
			return o, nil
		}
	}
	return s.orders.GetByPaymentIntentID(ctx, ev.IntentID)
}

// ignoreSettled treats a forbidden transition as already handled.
func ignoreSettled(err error) error {
	if errors.Is(err, order.ErrInvalidTransition) {
		return nil
	}
	return err
}
