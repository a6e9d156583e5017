package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"

	"github.com/QuanTND2497/expense-tracker/internal/domain"
)

const facebookProfileURL = "https://graph.facebook.com/me"

// FacebookProvider implements port.AuthProvider for Facebook Login.
type FacebookProvider struct {
	conf       *oauth2.Config
	httpClient *http.Client
}

// NewFacebookProvider creates a new Facebook OAuth2 provider.
func NewFacebookProvider(clientID, clientSecret, redirectURL string) *FacebookProvider {
	return &FacebookProvider{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     facebook.Endpoint,
			Scopes:       []string{"email", "public_profile"},
		},
		httpClient: &http.Client{},
	}
}

// ProviderName returns "facebook".
func (f *FacebookProvider) ProviderName() string {
	return "facebook"
}

// AuthURL returns the Facebook login dialog URL.
func (f *FacebookProvider) AuthURL(state string) string {
	return f.conf.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for a provider access token.
func (f *FacebookProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	tok, err := f.conf.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("facebook: token exchange: %w", err)
	}
	return tok.AccessToken, nil
}

// GetUserProfile fetches the user profile from the Graph API. Facebook may
// omit the email field entirely when the user registered with a phone number.
func (f *FacebookProvider) GetUserProfile(ctx context.Context, accessToken string) (*domain.SocialProfile, error) {
	params := url.Values{
		"fields":       {"id,name,email,picture.type(large)"},
		"access_token": {accessToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, facebookProfileURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("facebook: create profile request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facebook: fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("facebook: profile fetch failed (%d): %s", resp.StatusCode, string(body))
	}

	var profile struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("facebook: decode profile: %w", err)
	}

	return &domain.SocialProfile{
		Provider:   "facebook",
		ProviderID: profile.ID,
		Email:      profile.Email,
		Name:       profile.Name,
		Avatar:     profile.Picture.Data.URL,
	}, nil
}
