package port

import (
	"context"

	"github.com/QuanTND2497/expense-tracker/internal/domain"
)

// AuthProvider abstracts an OAuth2 identity provider. Implementations handle
// code exchange and profile retrieval for a specific provider (Google,
// Facebook, etc.).
type AuthProvider interface {
	// ProviderName returns the name of this provider (e.g. "google", "facebook").
	ProviderName() string

	// AuthURL returns the full OAuth2 authorization URL for redirecting the user.
	AuthURL(state string) string

	// ExchangeCode exchanges an authorization code for a provider access token.
	ExchangeCode(ctx context.Context, code string) (string, error)

	// GetUserProfile fetches the authenticated user's profile from the provider.
	GetUserProfile(ctx context.Context, accessToken string) (*domain.SocialProfile, error)
}

// AuthProviderRegistry holds multiple AuthProvider implementations keyed by name.
type AuthProviderRegistry map[string]AuthProvider
