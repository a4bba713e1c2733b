package payment

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mistcurrent/server/internal/module/billing"
	"github.com/mistcurrent/server/internal/module/order"
	"github.com/mistcurrent/server/internal/module/payment/provider"
	"github.com/mistcurrent/server/internal/shared/config"
)

// --- fakes ---

type fakeBillingRepo struct {
	plans map[string]*billing.Plan
	subs  map[uuid.UUID]*billing.Subscription
}

func newFakeBillingRepo() *fakeBillingRepo {
	r := &fakeBillingRepo{
		plans: make(map[string]*billing.Plan),
		subs:  make(map[uuid.UUID]*billing.Subscription),
	}
	for _, p := range billing.DefaultPlans() {
		plan := p
		r.plans[plan.ID] = &plan
	}
	return r
}

func (r *fakeBillingRepo) ListActivePlans(context.Context) ([]*billing.Plan, error) { return nil, nil }
func (r *fakeBillingRepo) GetPlan(_ context.Context, id string) (*billing.Plan, error) {
	if p, ok := r.plans[id]; ok {
		return p, nil
	}
	return nil, billing.ErrPlanNotFound
}
func (r *fakeBillingRepo) SeedPlans(context.Context, []billing.Plan) error { return nil }
func (r *fakeBillingRepo) CreateSubscription(_ context.Context, s *billing.Subscription) error {
	r.subs[s.UserID] = s
	return nil
}
func (r *fakeBillingRepo) GetSubscriptionByUser(_ context.Context, userID uuid.UUID) (*billing.Subscription, error) {
	if s, ok := r.subs[userID]; ok {
		return s, nil
	}
	return nil, billing.ErrSubscriptionNotFound
}
func (r *fakeBillingRepo) UpdateSubscription(_ context.Context, s *billing.Subscription) error {
	r.subs[s.UserID] = s
	return nil
}
func (r *fakeBillingRepo) CountActiveSubscriptions(context.Context) (int64, error) { return 0, nil }

type fakeOrderRepo struct {
	orders map[uuid.UUID]*order.Order
}

func (r *fakeOrderRepo) Create(_ context.Context, o *order.Order) error {
	r.orders[o.ID] = o
	return nil
}
func (r *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, order.ErrOrderNotFound
}
func (r *fakeOrderRepo) GetByOrderNo(_ context.Context, orderNo string) (*order.Order, error) {
	for _, o := range r.orders {
		if o.OrderNo == orderNo {
			return o, nil
		}
	}
	return nil, order.ErrOrderNotFound
}
func (r *fakeOrderRepo) GetByPaymentIntentID(_ context.Context, intentID string) (*order.Order, error) {
	for _, o := range r.orders {
		if o.PaymentIntentID == intentID {
			return o, nil
		}
	}
	return nil, order.ErrOrderNotFound
}
func (r *fakeOrderRepo) Update(_ context.Context, o *order.Order) error {
	r.orders[o.ID] = o
	return nil
}
func (r *fakeOrderRepo) ListByUser(context.Context, uuid.UUID, int, int) ([]*order.Order, int64, error) {
	return nil, 0, nil
}

type fakePaymentRepo struct {
	payments map[string]*Payment
	events   map[string]bool
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		payments: make(map[string]*Payment),
		events:   make(map[string]bool),
	}
}

func (r *fakePaymentRepo) CreatePayment(_ context.Context, p *Payment) error {
	r.payments[p.IntentID] = p
	return nil
}
func (r *fakePaymentRepo) GetPaymentByIntentID(_ context.Context, intentID string) (*Payment, error) {
	if p, ok := r.payments[intentID]; ok {
		return p, nil
	}
	return nil, ErrPaymentNotFound
}
func (r *fakePaymentRepo) GetLatestPaymentForOrder(_ context.Context, orderID uuid.UUID) (*Payment, error) {
	for _, p := range r.payments {
		if p.OrderID == orderID {
			return p, nil
		}
	}
	return nil, ErrPaymentNotFound
}
func (r *fakePaymentRepo) UpdatePayment(_ context.Context, p *Payment) error {
	r.payments[p.IntentID] = p
	return nil
}
func (r *fakePaymentRepo) RecordEvent(_ context.Context, e *WebhookEvent) error {
	key := e.Provider + ":" + e.EventID
	if r.events[key] {
		return ErrDuplicateEvent
	}
	r.events[key] = true
	return nil
}

type fakeProvider struct {
	intents map[string]*provider.Intent
}

func (p *fakeProvider) Name() string { return "fakepay" }
func (p *fakeProvider) CreateIntent(_ context.Context, req *provider.CreateIntentRequest) (*provider.Intent, error) {
	intent := &provider.Intent{
		ID:           "int_" + req.OrderNo,
		ClientSecret: "cs_" + req.OrderNo,
		Status:       "requires_payment_method",
		Amount:       req.Amount,
		Currency:     req.Currency,
	}
	p.intents[intent.ID] = intent
	return intent, nil
}
func (p *fakeProvider) ConfirmIntent(_ context.Context, intentID string) (*provider.Intent, error) {
	in := p.intents[intentID]
	in.Status = "succeeded"
	return in, nil
}
func (p *fakeProvider) GetIntent(_ context.Context, intentID string) (*provider.Intent, error) {
	return p.intents[intentID], nil
}
func (p *fakeProvider) VerifyWebhookSignature(_ []byte, signature string) error {
	if signature != "good" {
		return provider.ErrInvalidSignature
	}
	return nil
}
func (p *fakeProvider) ParseWebhookEvent(payload []byte) (*provider.Event, error) {
	var ev provider.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	ev.Raw = json.RawMessage(payload)
	return &ev, nil
}

type fakeProvisioner struct {
	provisioned []uuid.UUID
}

func (f *fakeProvisioner) Provision(_ context.Context, userID uuid.UUID, _ string) error {
	f.provisioned = append(f.provisioned, userID)
	return nil
}

// --- setup ---

type testEnv struct {
	svc         *Service
	orders      *order.Service
	orderRepo   *fakeOrderRepo
	billingRepo *fakeBillingRepo
	provisioner *fakeProvisioner
}

func newTestEnv() *testEnv {
	cfg := &config.BillingConfig{
		DefaultPlanID: "2year",
		OrderExpiry:   30 * time.Minute,
	}
	billingRepo := newFakeBillingRepo()
	billingSvc := billing.NewService(billingRepo, cfg, zap.NewNop())

	orderRepo := &fakeOrderRepo{orders: make(map[uuid.UUID]*order.Order)}
	orderSvc := order.NewService(orderRepo, billingSvc, cfg, zap.NewNop())

	registry := provider.NewRegistry()
	registry.Register(&fakeProvider{intents: make(map[string]*provider.Intent)})

	provisioner := &fakeProvisioner{}
	svc := NewService(newFakePaymentRepo(), registry, orderSvc, billingSvc, provisioner,
		"https://mistcurrent.com", zap.NewNop())

	return &testEnv{
		svc:         svc,
		orders:      orderSvc,
		orderRepo:   orderRepo,
		billingRepo: billingRepo,
		provisioner: provisioner,
	}
}

func succeededPayload(t *testing.T, orderNo, intentID string) []byte {
	t.Helper()
	payload, err := json.Marshal(provider.Event{
		ID:       "evt_" + orderNo,
		Type:     provider.EventPaymentSucceeded,
		IntentID: intentID,
		OrderNo:  orderNo,
	})
	require.NoError(t, err)
	return payload
}

// --- tests ---

func TestCreatePaymentForPendingOrder(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()

	o, err := env.orders.Create(context.Background(), userID, "2year", "user@example.com")
	require.NoError(t, err)

	p, intent, err := env.svc.Create(context.Background(), userID, o.ID, "fakepay")
	require.NoError(t, err)

	assert.Equal(t, "fakepay", p.Provider)
	assert.Equal(t, int64(5256), p.Amount)
	assert.Equal(t, "cs_"+o.OrderNo, intent.ClientSecret)
	assert.Equal(t, intent.ID, env.orderRepo.orders[o.ID].PaymentIntentID)
}

func TestCreatePaymentRejectsNonPendingOrder(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()

	o, err := env.orders.Create(context.Background(), userID, "1month", "user@example.com")
	require.NoError(t, err)
	require.NoError(t, env.orders.MarkPaid(context.Background(), o, time.Now()))

	_, _, err = env.svc.Create(context.Background(), userID, o.ID, "fakepay")
	assert.ErrorIs(t, err, ErrOrderNotPayable)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	env := newTestEnv()

	err := env.svc.HandleWebhook(context.Background(), "fakepay", []byte(`{}`), "bad")
	assert.ErrorIs(t, err, provider.ErrInvalidSignature)
}

func TestWebhookSucceededActivatesSubscriptionAndProvisions(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()

	o, err := env.orders.Create(context.Background(), userID, "2year", "user@example.com")
	require.NoError(t, err)
	_, _, err = env.svc.Create(context.Background(), userID, o.ID, "fakepay")
	require.NoError(t, err)

	payload := succeededPayload(t, o.OrderNo, "int_"+o.OrderNo)
	require.NoError(t, env.svc.HandleWebhook(context.Background(), "fakepay", payload, "good"))

	got := env.orderRepo.orders[o.ID]
	assert.Equal(t, order.StatusPaid, got.Status)
	require.NotNil(t, got.PaidAt)

	sub, err := env.billingRepo.GetSubscriptionByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "2year", sub.PlanID)
	assert.Equal(t, billing.SubscriptionStatusActive, sub.Status)

	assert.Equal(t, []uuid.UUID{userID}, env.provisioner.provisioned)
}

func TestWebhookDuplicateEventIsDropped(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()

	o, err := env.orders.Create(context.Background(), userID, "6month", "user@example.com")
	require.NoError(t, err)
	_, _, err = env.svc.Create(context.Background(), userID, o.ID, "fakepay")
	require.NoError(t, err)

	payload := succeededPayload(t, o.OrderNo, "int_"+o.OrderNo)
	require.NoError(t, env.svc.HandleWebhook(context.Background(), "fakepay", payload, "good"))
	require.NoError(t, env.svc.HandleWebhook(context.Background(), "fakepay", payload, "good"))

	// Provisioning ran once despite the redelivery.
	assert.Len(t, env.provisioner.provisioned, 1)
}

func TestWebhookFailedMarksOrderFailed(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()

	o, err := env.orders.Create(context.Background(), userID, "1month", "user@example.com")
	require.NoError(t, err)

	payload, err := json.Marshal(provider.Event{
		ID:      "evt_fail",
		Type:    provider.EventPaymentFailed,
		OrderNo: o.OrderNo,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.HandleWebhook(context.Background(), "fakepay", payload, "good"))
	assert.Equal(t, order.StatusFailed, env.orderRepo.orders[o.ID].Status)
}

func TestWebhookUnknownOrderIsAcknowledged(t *testing.T) {
	env := newTestEnv()

	payload := succeededPayload(t, "ORDER_0_NOPE", "int_nope")
	assert.NoError(t, env.svc.HandleWebhook(context.Background(), "fakepay", payload, "good"))
}
