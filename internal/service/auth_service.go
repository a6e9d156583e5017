package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/QuanTND2497/expense-tracker/internal/domain"
	"github.com/QuanTND2497/expense-tracker/internal/port"
	"github.com/QuanTND2497/expense-tracker/internal/token"
)

const bcryptCost = 10

// AuthService orchestrates registration, login, social login, token refresh
// and logout. Token persistence is a plain read-then-write with no locking;
// two concurrent logins for the same user race and the last write wins,
// silently invalidating the other session (single active session model).
type AuthService struct {
	users     port.UserStore
	providers port.AuthProviderRegistry
	issuer    *token.Issuer
}

// NewAuthService creates a new authentication service.
func NewAuthService(users port.UserStore, providers port.AuthProviderRegistry, issuer *token.Issuer) *AuthService {
	return &AuthService{users: users, providers: providers, issuer: issuer}
}

// Register creates a local-password account.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, &domain.User{
		Email:    email,
		Password: string(hash),
		Name:     name,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login validates email/password and issues a fresh token pair. Failures are
// deliberately indistinguishable to the caller: an unregistered email and a
// wrong password both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, port.ErrUserNotFound) {
			return nil, "", "", port.ErrInvalidCredentials
		}
		return nil, "", "", err
	}

	// OAuth-only accounts have no hash; bcrypt fails closed on an empty one.
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", "", port.ErrInvalidCredentials
	}

	access, refresh, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, "", "", err
	}

	slog.Info("user logged in", "user_id", user.ID)
	return user, access, refresh, nil
}

// GetAuthURL returns the OAuth2 authorization URL for the given provider.
func (s *AuthService) GetAuthURL(providerName, state string) (string, error) {
	provider, ok := s.providers[providerName]
	if !ok {
		return "", fmt.Errorf("unknown provider: %s", providerName)
	}
	return provider.AuthURL(state), nil
}

// HandleCallback processes the OAuth2 callback: exchanges the code, resolves
// the provider profile to a local user, and issues the same token pair as a
// password login.
func (s *AuthService) HandleCallback(ctx context.Context, providerName, code string) (*domain.User, string, string, error) {
	provider, ok := s.providers[providerName]
	if !ok {
		return nil, "", "", fmt.Errorf("unknown provider: %s", providerName)
	}

	providerToken, err := provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, "", "", fmt.Errorf("exchange code: %w", err)
	}

	profile, err := provider.GetUserProfile(ctx, providerToken)
	if err != nil {
		return nil, "", "", fmt.Errorf("get profile: %w", err)
	}

	user, err := s.ResolveProfile(ctx, profile)
	if err != nil {
		return nil, "", "", err
	}

	access, refresh, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, "", "", err
	}

	slog.Info("user authenticated", "user_id", user.ID, "provider", providerName)
	return user, access, refresh, nil
}

// ResolveProfile maps an OAuth profile to a local user: lookup by provider ID
// or email, link the provider to an existing account without touching other
// fields, or create a new account seeded from the profile. A provider that
// supplies no email results in an empty-string email on the new record.
func (s *AuthService) ResolveProfile(ctx context.Context, profile *domain.SocialProfile) (*domain.User, error) {
	user, err := s.users.FindUserByProviderOrEmail(ctx, profile.Provider, profile.ProviderID, profile.Email)
	if err != nil && !errors.Is(err, port.ErrUserNotFound) {
		return nil, err
	}

	if user != nil {
		if providerID(user, profile.Provider) == "" {
			if err := s.users.LinkProvider(ctx, user.ID, profile.Provider, profile.ProviderID); err != nil {
				return nil, err
			}
			setProviderID(user, profile.Provider, profile.ProviderID)
		}
		return user, nil
	}

	created := &domain.User{
		Email:  profile.Email,
		Name:   profile.Name,
		Avatar: profile.Avatar,
	}
	setProviderID(created, profile.Provider, profile.ProviderID)

	return s.users.CreateUser(ctx, created)
}

// Refresh validates the refresh token against the stored one and issues a new
// access token only; the refresh token stays as it is.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, port.ErrTokenExpired) {
			return "", port.ErrTokenExpired
		}
		return "", port.ErrInvalidRefreshToken
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil || user.RefreshToken != refreshToken {
		// A newer login has rotated the stored token, or the user is gone.
		return "", port.ErrInvalidRefreshToken
	}

	access, err := s.issuer.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return "", err
	}
	if err := s.users.SetAccessToken(ctx, user.ID, access); err != nil {
		return "", err
	}

	return access, nil
}

// Logout nulls the stored token pair, revoking both tokens for their
// remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.users.SetTokens(ctx, userID, "", ""); err != nil {
		return err
	}
	slog.Info("user logged out", "user_id", userID)
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (string, string, error) {
	access, err := s.issuer.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.issuer.IssueRefreshToken(user.ID, user.Email)
	if err != nil {
		return "", "", err
	}

	if err := s.users.SetTokens(ctx, user.ID, access, refresh); err != nil {
		return "", "", err
	}
	user.AccessToken = access
	user.RefreshToken = refresh

	return access, refresh, nil
}

func providerID(u *domain.User, provider string) string {
	if provider == "facebook" {
		return u.FacebookID
	}
	return u.GoogleID
}

func setProviderID(u *domain.User, provider, id string) {
	if provider == "facebook" {
		u.FacebookID = id
		return
	}
	u.GoogleID = id
}
