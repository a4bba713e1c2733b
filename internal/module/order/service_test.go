package order

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mistcurrent/server/internal/module/billing"
	"github.com/mistcurrent/server/internal/shared/config"
)

type fakeBillingRepo struct {
	plans map[string]*billing.Plan
}

func newFakeBillingRepo() *fakeBillingRepo {
	r := &fakeBillingRepo{plans: make(map[string]*billing.Plan)}
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
func (r *fakeBillingRepo) CreateSubscription(context.Context, *billing.Subscription) error {
	return nil
}
func (r *fakeBillingRepo) GetSubscriptionByUser(context.Context, uuid.UUID) (*billing.Subscription, error) {
	return nil, billing.ErrSubscriptionNotFound
}
func (r *fakeBillingRepo) UpdateSubscription(context.Context, *billing.Subscription) error {
	return nil
}
func (r *fakeBillingRepo) CountActiveSubscriptions(context.Context) (int64, error) { return 0, nil }

type fakeOrderRepo struct {
	orders map[uuid.UUID]*Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *Order) error {
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, ErrOrderNotFound
}

func (r *fakeOrderRepo) GetByOrderNo(_ context.Context, orderNo string) (*Order, error) {
	for _, o := range r.orders {
		if o.OrderNo == orderNo {
			return o, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (r *fakeOrderRepo) GetByPaymentIntentID(_ context.Context, intentID string) (*Order, error) {
	for _, o := range r.orders {
		if o.PaymentIntentID == intentID {
			return o, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (r *fakeOrderRepo) Update(_ context.Context, o *Order) error {
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*Order, int64, error) {
	var out []*Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func newTestService() (*Service, *fakeOrderRepo) {
	cfg := &config.BillingConfig{
		StrictPlanLookup: false,
		DefaultPlanID:    "2year",
		OrderExpiry:      30 * time.Minute,
	}
	billingSvc := billing.NewService(newFakeBillingRepo(), cfg, zap.NewNop())
	repo := newFakeOrderRepo()
	return NewService(repo, billingSvc, cfg, zap.NewNop()), repo
}

func TestCreateOrderFreezesQuote(t *testing.T) {
	svc, _ := newTestService()
	userID := uuid.New()

	o, err := svc.Create(context.Background(), userID, "2year", "user@example.com")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(o.OrderNo, "ORDER_"))
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "2year", o.PlanID)
	assert.Equal(t, 26, o.DurationMonths)
	assert.Equal(t, int64(5256), o.TotalCents)
	assert.Equal(t, 82, o.DiscountPercent)
	require.NotNil(t, o.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), *o.ExpiresAt, time.Minute)
}

func TestCreateOrderUnknownPlanFallsBack(t *testing.T) {
	svc, _ := newTestService()

	o, err := svc.Create(context.Background(), uuid.New(), "no-such-plan", "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "2year", o.PlanID)
}

func TestGetScopedToOwner(t *testing.T) {
	svc, _ := newTestService()
	owner := uuid.New()

	o, err := svc.Create(context.Background(), owner, "1month", "user@example.com")
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), owner, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = svc.Get(context.Background(), uuid.New(), o.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestPaymentLifecycle(t *testing.T) {
	svc, _ := newTestService()
	userID := uuid.New()

	o, err := svc.Create(context.Background(), userID, "6month", "user@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.AttachPaymentIntent(context.Background(), o, "airwallex", "int_123"))

	found, err := svc.GetByPaymentIntentID(context.Background(), "int_123")
	require.NoError(t, err)
	assert.Equal(t, o.ID, found.ID)

	paidAt := time.Now()
	require.NoError(t, svc.MarkPaid(context.Background(), o, paidAt))
	assert.True(t, o.IsPaid())
	require.NotNil(t, o.PaidAt)

	// A paid order cannot fail.
	assert.ErrorIs(t, svc.MarkFailed(context.Background(), o), ErrInvalidTransition)

	require.NoError(t, svc.MarkRefunded(context.Background(), o))
	assert.Equal(t, StatusRefunded, o.Status)
}

func TestRetryAfterFailure(t *testing.T) {
	svc, _ := newTestService()
	userID := uuid.New()

	o, err := svc.Create(context.Background(), userID, "1month", "user@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.MarkFailed(context.Background(), o))

	retried, err := svc.Retry(context.Background(), userID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, retried.Status)
}
