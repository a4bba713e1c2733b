package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const googleProvider = "google"

// AuthResult is a successful authentication: the account plus a signed
// access token.
type AuthResult struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}

// Service implements account operations.
type Service struct {
	repo   Repository
	tokens *TokenManager
	google *GoogleOAuth
	logger *zap.Logger
}

// NewService creates a user service. google may be nil when Google
// sign-in is not configured.
func NewService(repo Repository, tokens *TokenManager, google *GoogleOAuth, logger *zap.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, google: google, logger: logger}
}

// Register creates an email/password account and signs the user in.
func (s *Service) Register(ctx context.Context, email, name, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: &hash,
		Status:       StatusActive,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", u.ID.String()))
	return s.issue(u)
}

// Login authenticates an email/password account.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !u.IsEmailUser() {
		return nil, ErrOAuthAccount
	}
	if !CheckPassword(*u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.CanLogin() {
		return nil, ErrAccountSuspended
	}

	return s.issue(u)
}

// GoogleAuthURL returns the Google authorization URL.
func (s *Service) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", errors.New("google sign-in not configured")
	}
	return s.google.AuthURL(state), nil
}

// GoogleCallback completes the Google flow: it exchanges the code,
// then finds, links or creates the matching account.
func (s *Service) GoogleCallback(ctx context.Context, code string) (*AuthResult, error) {
	if s.google == nil {
		return nil, errors.New("google sign-in not configured")
	}

	info, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.GetByOAuth(ctx, googleProvider, info.ID)
	switch {
	case err == nil:
		// Existing Google account.
	case errors.Is(err, ErrUserNotFound):
		u, err = s.linkOrCreateGoogleUser(ctx, info)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if !u.CanLogin() {
		return nil, ErrAccountSuspended
	}
	return s.issue(u)
}

// linkOrCreateGoogleUser attaches the Google identity to an existing
// account with the same email, or registers a new account.
func (s *Service) linkOrCreateGoogleUser(ctx context.Context, info *GoogleUserInfo) (*User, error) {
	provider := googleProvider
	oauthID := info.ID

	u, err := s.repo.GetByEmail(ctx, normalizeEmail(info.Email))
	switch {
	case err == nil:
		u.OAuthProvider = &provider
		u.OAuthID = &oauthID
		if err := s.repo.Update(ctx, u); err != nil {
			return nil, err
		}
		s.logger.Info("linked google identity", zap.String("user_id", u.ID.String()))
		return u, nil
	case errors.Is(err, ErrUserNotFound):
		u = &User{
			ID:            uuid.New(),
			Email:         normalizeEmail(info.Email),
			Name:          info.Name,
			OAuthProvider: &provider,
			OAuthID:       &oauthID,
			Status:        StatusActive,
		}
		if err := s.repo.Create(ctx, u); err != nil {
			return nil, err
		}
		s.logger.Info("user registered via google", zap.String("user_id", u.ID.String()))
		return u, nil
	default:
		return nil, err
	}
}

// GetByID returns an account by id.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// EmailByID resolves a user's email address. Satisfies the VPN
// module's directory dependency.
func (s *Service) EmailByID(ctx context.Context, id uuid.UUID) (string, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("resolve email: %w", err)
	}
	return u.Email, nil
}

func (s *Service) issue(u *User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
