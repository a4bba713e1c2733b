package vpn

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mistcurrent/server/internal/module/billing"
	"github.com/mistcurrent/server/internal/shared/config"
)

// --- fakes ---

type fakeRepo struct {
	byUser map[uuid.UUID]*Access
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byUser: make(map[uuid.UUID]*Access)}
}

func (r *fakeRepo) Create(_ context.Context, access *Access) error {
	r.byUser[access.UserID] = access
	return nil
}
func (r *fakeRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Access, error) {
	if a, ok := r.byUser[userID]; ok {
		return a, nil
	}
	return nil, ErrAccessNotFound
}
func (r *fakeRepo) GetByToken(_ context.Context, token string) (*Access, error) {
	for _, a := range r.byUser {
		if a.Token == token {
			return a, nil
		}
	}
	return nil, ErrAccessNotFound
}
func (r *fakeRepo) Update(_ context.Context, access *Access) error {
	r.byUser[access.UserID] = access
	return nil
}

type fakeStore struct {
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Put(_ context.Context, key, _ string, body []byte) error {
	s.objects[key] = body
	return nil
}
func (s *fakeStore) PresignDownload(_ context.Context, key string, _ time.Duration) (string, error) {
	if _, ok := s.objects[key]; !ok {
		return "", fmt.Errorf("no such object: %s", key)
	}
	return "https://storage.example.com/" + key + "?signed=1", nil
}
func (s *fakeStore) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

type fakeDirectory struct {
	emails map[uuid.UUID]string
}

func (d *fakeDirectory) EmailByID(_ context.Context, userID uuid.UUID) (string, error) {
	if email, ok := d.emails[userID]; ok {
		return email, nil
	}
	return "", fmt.Errorf("user not found: %s", userID)
}

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

type testEnv struct {
	svc   *Service
	repo  *fakeRepo
	store *fakeStore
	users *fakeDirectory
}

func newTestEnv() *testEnv {
	repo := newFakeRepo()
	store := newFakeStore()
	users := &fakeDirectory{emails: make(map[uuid.UUID]string)}

	billingCfg := &config.BillingConfig{DefaultPlanID: "2year"}
	billingSvc := billing.NewService(newFakeBillingRepo(), billingCfg, zap.NewNop())

	cfg := &config.VPNConfig{
		SubscriptionBaseURL: "https://vpn.mistcurrent.com",
		Servers: []string{
			"us-west-1.mistcurrent.com",
			"jp-tokyo-1.mistcurrent.com",
		},
		ConfigURLExpiry: 15 * time.Minute,
		DevicesLimit:    5,
	}

	return &testEnv{
		svc:   NewService(repo, store, billingSvc, users, cfg, zap.NewNop()),
		repo:  repo,
		store: store,
		users: users,
	}
}

func (e *testEnv) addUser(email string) uuid.UUID {
	id := uuid.New()
	e.users.emails[id] = email
	return id
}

func TestProvisionCreatesAccessAndConfigs(t *testing.T) {
	env := newTestEnv()
	userID := env.addUser("user@example.com")

	err := env.svc.Provision(context.Background(), userID, "12month")
	require.NoError(t, err)

	access, err := env.repo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, AccessStatusActive, access.Status)
	assert.Equal(t, "12month", access.PlanID)
	assert.Equal(t, "us-west-1.mistcurrent.com", access.Server)
	assert.Equal(t, 5, access.DevicesLimit)
	assert.NotEmpty(t, access.Token)

	ovpn := env.store.objects[fmt.Sprintf("configs/%s/client.ovpn", userID)]
	require.NotEmpty(t, ovpn)
	assert.Contains(t, string(ovpn), "remote us-west-1.mistcurrent.com 1194")
	assert.Contains(t, string(ovpn), "# User: user@example.com")

	wg := env.store.objects[fmt.Sprintf("configs/%s/wg0.conf", userID)]
	require.NotEmpty(t, wg)
	assert.Contains(t, string(wg), "Endpoint = us-west-1.mistcurrent.com:51820")
}

func TestProvisionIsIdempotent(t *testing.T) {
	env := newTestEnv()
	userID := env.addUser("user@example.com")

	require.NoError(t, env.svc.Provision(context.Background(), userID, "6month"))
	access, err := env.repo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	token := access.Token

	// Renewal keeps the token and switches the plan.
	require.NoError(t, env.svc.Provision(context.Background(), userID, "2year"))
	access, err = env.repo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "2year", access.PlanID)
	assert.Equal(t, token, access.Token)
}

func TestProvisionAfterSuspensionRotatesToken(t *testing.T) {
	env := newTestEnv()
	userID := env.addUser("user@example.com")

	require.NoError(t, env.svc.Provision(context.Background(), userID, "1month"))
	access, _ := env.repo.GetByUserID(context.Background(), userID)
	oldToken := access.Token

	require.NoError(t, env.svc.Suspend(context.Background(), userID))
	require.NoError(t, env.svc.Provision(context.Background(), userID, "1month"))

	access, err := env.repo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, AccessStatusActive, access.Status)
	assert.NotEqual(t, oldToken, access.Token)
}

func TestSuspendRemovesStoredConfigs(t *testing.T) {
	env := newTestEnv()
	userID := env.addUser("user@example.com")

	require.NoError(t, env.svc.Provision(context.Background(), userID, "1month"))
	assert.Len(t, env.store.objects, 2)

	require.NoError(t, env.svc.Suspend(context.Background(), userID))
	assert.Empty(t, env.store.objects)

	access, err := env.repo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, AccessStatusSuspended, access.Status)
}

func TestSummary(t *testing.T) {
	env := newTestEnv()
	userID := env.addUser("user@example.com")

	require.NoError(t, env.svc.Provision(context.Background(), userID, "2year"))

	summary, err := env.svc.Summary(context.Background(), userID)
	require.NoError(t, err)
	assert.Contains(t, summary.SubscriptionURL, "https://vpn.mistcurrent.com/subscribe?")
	assert.Contains(t, summary.SubscriptionURL, "user=user%40example.com")
	require.Len(t, summary.Servers, 2)
	assert.Equal(t, "United States", summary.Servers[0].Country)
	assert.Equal(t, "Japan", summary.Servers[1].Country)
}

func TestSummaryNoAccess(t *testing.T) {
	env := newTestEnv()
	userID := env.addUser("user@example.com")

	_, err := env.svc.Summary(context.Background(), userID)
	assert.ErrorIs(t, err, ErrAccessNotFound)
}

func TestConfigDownloadURL(t *testing.T) {
	env := newTestEnv()
	userID := env.addUser("user@example.com")
	require.NoError(t, env.svc.Provision(context.Background(), userID, "1month"))

	url, err := env.svc.ConfigDownloadURL(context.Background(), userID, ProtocolOpenVPN)
	require.NoError(t, err)
	assert.Contains(t, url, "client.ovpn")

	url, err = env.svc.ConfigDownloadURL(context.Background(), userID, ProtocolWireGuard)
	require.NoError(t, err)
	assert.Contains(t, url, "wg0.conf")

	_, err = env.svc.ConfigDownloadURL(context.Background(), userID, "pptp")
	assert.ErrorIs(t, err, ErrUnknownProtocol)
}

func TestConfigDownloadURLSuspended(t *testing.T) {
	env := newTestEnv()
	userID := env.addUser("user@example.com")
	require.NoError(t, env.svc.Provision(context.Background(), userID, "1month"))
	require.NoError(t, env.svc.Suspend(context.Background(), userID))

	_, err := env.svc.ConfigDownloadURL(context.Background(), userID, ProtocolOpenVPN)
	assert.ErrorIs(t, err, ErrAccessSuspended)
}
