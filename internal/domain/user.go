package domain

import "time"

// User represents an account in the system. A user is reachable by email or
// by exactly one OAuth provider ID. Only the most recently issued token pair
// is stored; issuing a new pair implicitly revokes the previous one.
type User struct {
	ID           string    `json:"id"          db:"id"`
	Email        string    `json:"email"       db:"email"`
	Password     string    `json:"-"           db:"password"` // bcrypt hash, empty for OAuth-only accounts
	Name         string    `json:"name"        db:"name"`
	Avatar       string    `json:"avatar"      db:"avatar"`
	GoogleID     string    `json:"-"           db:"google_id"`
	FacebookID   string    `json:"-"           db:"facebook_id"`
	AccessToken  string    `json:"-"           db:"access_token"`
	RefreshToken string    `json:"-"           db:"refresh_token"`
	CreatedAt    time.Time `json:"created_at"  db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"  db:"updated_at"`
}

// SocialProfile is the normalized identity returned by an OAuth provider.
type SocialProfile struct {
	Provider   string `json:"provider"`
	ProviderID string `json:"provider_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
}

// UserContext is the authenticated user context injected into request handlers.
type UserContext struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}
