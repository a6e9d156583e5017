package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuanTND2497/expense-tracker/internal/domain"
	"github.com/QuanTND2497/expense-tracker/internal/service"
	"github.com/QuanTND2497/expense-tracker/internal/token"
)

func newAuthTestApp(t *testing.T) (*fiber.App, *token.Issuer, *service.FakeUserStore) {
	t.Helper()

	issuer, err := token.NewIssuer("access-secret", time.Hour, "refresh-secret", time.Hour)
	require.NoError(t, err)

	users := service.NewFakeUserStore()

	app := fiber.New()
	app.Get("/protected", TokenAuth(issuer, users), func(c fiber.Ctx) error {
		return c.JSON(GetUserContext(c))
	})

	return app, issuer, users
}

func authedUser(t *testing.T, issuer *token.Issuer, users *service.FakeUserStore) (*domain.User, string) {
	t.Helper()

	ctx := context.Background()
	user, err := users.CreateUser(ctx, &domain.User{Email: "anna@example.com", Name: "Anna"})
	require.NoError(t, err)

	access, err := issuer.IssueAccessToken(user.ID, user.Email)
	require.NoError(t, err)
	require.NoError(t, users.SetTokens(ctx, user.ID, access, "refresh"))

	return user, access
}

func TestTokenAuthAllowsValidToken(t *testing.T) {
	app, issuer, users := newAuthTestApp(t)
	_, access := authedUser(t, issuer, users)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestTokenAuthRejectsMissingHeader(t *testing.T) {
	app, _, _ := newAuthTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestTokenAuthRejectsMalformedToken(t *testing.T) {
	app, _, _ := newAuthTestApp(t)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestTokenAuthRejectsRevokedToken(t *testing.T) {
	app, issuer, users := newAuthTestApp(t)
	user, access := authedUser(t, issuer, users)

	// Logout nulls the stored pair; the still-unexpired token must be refused.
	require.NoError(t, users.SetTokens(context.Background(), user.ID, "", ""))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestTokenAuthRejectsSupersededToken(t *testing.T) {
	app, issuer, users := newAuthTestApp(t)
	user, access := authedUser(t, issuer, users)

	// A later login overwrote the stored slot with a different token.
	newer, err := issuer.IssueAccessToken(user.ID, "rotated@example.com")
	require.NoError(t, err)
	require.NotEqual(t, access, newer)
	require.NoError(t, users.SetAccessToken(context.Background(), user.ID, newer))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestBearerToken(t *testing.T) {
	app := fiber.New()
	var got string
	app.Get("/", func(c fiber.Ctx) error {
		got = BearerToken(c)
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"standard", "Bearer abc123", "abc123"},
		{"case insensitive scheme", "bearer abc123", "abc123"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"no token", "Bearer", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			_, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
