package vpn

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mistcurrent/server/internal/module/billing"
	"github.com/mistcurrent/server/internal/shared/config"
	"github.com/mistcurrent/server/internal/shared/metrics"
	"github.com/mistcurrent/server/internal/shared/random"
)

// UserDirectory resolves user identity needed for config rendering.
// Implemented by the user module and injected to keep the dependency
// one-directional.
type UserDirectory interface {
	EmailByID(ctx context.Context, userID uuid.UUID) (string, error)
}

// Service provisions VPN access and serves config downloads.
type Service struct {
	repo    Repository
	store   ConfigStore
	billing *billing.Service
	users   UserDirectory
	cfg     *config.VPNConfig
	logger  *zap.Logger
}

// NewService creates a VPN service.
func NewService(
	repo Repository,
	store ConfigStore,
	billingSvc *billing.Service,
	users UserDirectory,
	cfg *config.VPNConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:    repo,
		store:   store,
		billing: billingSvc,
		users:   users,
		cfg:     cfg,
		logger:  logger,
	}
}

// Provision grants VPN access after a successful payment: it creates or
// reactivates the access record, renders fresh client configs for both
// protocols and uploads them to object storage. Safe to call repeatedly
// for the same user.
func (s *Service) Provision(ctx context.Context, userID uuid.UUID, planID string) error {
	if len(s.cfg.Servers) == 0 {
		return ErrNoServers
	}
	primary := s.cfg.Servers[0]

	email, err := s.users.EmailByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve user email: %w", err)
	}

	access, err := s.repo.GetByUserID(ctx, userID)
	switch err {
	case nil:
		// Renewal or plan change. Rotate the token so links issued
		// before a suspension stop working.
		if access.Status == AccessStatusSuspended {
			token, err := random.Hex(16)
			if err != nil {
				return err
			}
			access.Token = token
		}
		access.PlanID = planID
		access.Server = primary
		access.Status = AccessStatusActive
		access.ProvisionedAt = time.Now()
		if err := s.repo.Update(ctx, access); err != nil {
			return err
		}
	case ErrAccessNotFound:
		token, err := random.Hex(16)
		if err != nil {
			return err
		}
		access = &Access{
			ID:            uuid.New(),
			UserID:        userID,
			PlanID:        planID,
			Token:         token,
			Server:        primary,
			Status:        AccessStatusActive,
			DevicesLimit:  s.cfg.DevicesLimit,
			ProvisionedAt: time.Now(),
		}
		if err := s.repo.Create(ctx, access); err != nil {
			return err
		}
	default:
		return err
	}

	if err := s.uploadConfigs(ctx, access, email, primary); err != nil {
		return err
	}

	s.logger.Info("vpn access provisioned",
		zap.String("user_id", userID.String()),
		zap.String("plan_id", planID),
		zap.String("server", primary))
	return nil
}

// Suspend revokes access, typically when a subscription lapses.
// Stored configs are removed so stale download links go dark.
func (s *Service) Suspend(ctx context.Context, userID uuid.UUID) error {
	access, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if access.Status == AccessStatusSuspended {
		return nil
	}

	access.Status = AccessStatusSuspended
	if err := s.repo.Update(ctx, access); err != nil {
		return err
	}

	for _, protocol := range []string{ProtocolOpenVPN, ProtocolWireGuard} {
		if err := s.store.Delete(ctx, configKey(access.UserID, protocol)); err != nil {
			s.logger.Warn("delete stored vpn config failed",
				zap.String("user_id", userID.String()),
				zap.String("protocol", protocol),
				zap.Error(err))
		}
	}
	return nil
}

// AccessSummary is the account view of a user's VPN access.
type AccessSummary struct {
	Access          *Access
	SubscriptionURL string
	Servers         []Server
}

// Summary returns the user's access record, subscription link and the
// server fleet.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID) (*AccessSummary, error) {
	access, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if access.Status != AccessStatusActive {
		return nil, ErrAccessSuspended
	}

	email, err := s.users.EmailByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user email: %w", err)
	}

	planName := access.PlanID
	if plan, err := s.billing.ResolvePlan(ctx, access.PlanID); err == nil {
		planName = plan.Name
	}

	return &AccessSummary{
		Access:          access,
		SubscriptionURL: SubscriptionURL(s.cfg.SubscriptionBaseURL, email, access.Token, planName),
		Servers:         s.Servers(),
	}, nil
}

// ConfigDownloadURL issues a short-lived presigned link for the user's
// stored config in the requested protocol.
func (s *Service) ConfigDownloadURL(ctx context.Context, userID uuid.UUID, protocol string) (string, error) {
	if protocol != ProtocolOpenVPN && protocol != ProtocolWireGuard {
		return "", ErrUnknownProtocol
	}

	access, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if access.Status != AccessStatusActive {
		return "", ErrAccessSuspended
	}

	url, err := s.store.PresignDownload(ctx, configKey(userID, protocol), s.cfg.ConfigURLExpiry)
	if err != nil {
		return "", err
	}
	return url, nil
}

// Servers returns the fleet with regions and countries derived from
// hostnames.
func (s *Service) Servers() []Server {
	servers := make([]Server, len(s.cfg.Servers))
	for i, hostname := range s.cfg.Servers {
		servers[i] = ServerFromHostname(hostname)
	}
	return servers
}

func (s *Service) uploadConfigs(ctx context.Context, access *Access, email, server string) error {
	ovpn, err := RenderOpenVPN(email, access.ID.String(), server)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, configKey(access.UserID, ProtocolOpenVPN), "application/x-openvpn-profile", []byte(ovpn)); err != nil {
		return err
	}
	metrics.VPNConfigsIssuedTotal.WithLabelValues(ProtocolOpenVPN).Inc()

	wg, err := RenderWireGuard(server)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, configKey(access.UserID, ProtocolWireGuard), "text/plain", []byte(wg)); err != nil {
		return err
	}
	metrics.VPNConfigsIssuedTotal.WithLabelValues(ProtocolWireGuard).Inc()

	return nil
}

// configKey places each user's configs under a stable prefix so
// re-provisioning overwrites the previous files.
func configKey(userID uuid.UUID, protocol string) string {
	switch protocol {
	case ProtocolWireGuard:
		return fmt.Sprintf("configs/%s/wg0.conf", userID)
	default:
		return fmt.Sprintf("configs/%s/client.ovpn", userID)
	}
}
