package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuanTND2497/expense-tracker/internal/domain"
	"github.com/QuanTND2497/expense-tracker/internal/middleware"
	"github.com/QuanTND2497/expense-tracker/internal/port"
	"github.com/QuanTND2497/expense-tracker/internal/service"
	"github.com/QuanTND2497/expense-tracker/internal/token"
)

const testFrontendURL = "http://localhost:3000"

type authTestEnv struct {
	app   *fiber.App
	auth  *service.AuthService
	users *service.FakeUserStore
}

func newAuthTestEnv(t *testing.T, providers port.AuthProviderRegistry) *authTestEnv {
	t.Helper()

	issuer, err := token.NewIssuer("access-secret", time.Hour, "refresh-secret", 7*24*time.Hour)
	require.NoError(t, err)

	users := service.NewFakeUserStore()
	auth := service.NewAuthService(users, providers, issuer)

	app := fiber.New()
	tokenAuth := middleware.TokenAuth(issuer, users)
	NewAuthHandler(auth, testFrontendURL, issuer.RefreshTTL(), false).Register(app, tokenAuth)
	NewUserHandler(auth).Register(app)

	return &authTestEnv{app: app, auth: auth, users: users}
}

func refreshCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == refreshCookieName {
			return c
		}
	}
	return nil
}

func TestLoginSetsRefreshCookie(t *testing.T) {
	env := newAuthTestEnv(t, nil)
	_, err := env.auth.Register(context.Background(), "anna@example.com", "hunter2", "Anna")
	require.NoError(t, err)

	resp, err := env.app.Test(jsonRequest("POST", "/api/auth/login", `{"email":"anna@example.com","password":"hunter2"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookie := refreshCookie(resp)
	require.NotNil(t, cookie, "login must set the refresh cookie")
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["accessToken"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "anna@example.com", user["email"])
	assert.NotContains(t, user, "password", "password hash must never be serialized")
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newAuthTestEnv(t, nil)
	_, err := env.auth.Register(context.Background(), "anna@example.com", "hunter2", "Anna")
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload string
	}{
		{"unknown email", `{"email":"nobody@example.com","password":"hunter2"}`},
		{"wrong password", `{"email":"anna@example.com","password":"wrong"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := env.app.Test(jsonRequest("POST", "/api/auth/login", tc.payload))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "Invalid credentials", decodeBody(t, resp)["message"])
		})
	}
}

func TestLoginValidation(t *testing.T) {
	env := newAuthTestEnv(t, nil)

	resp, err := env.app.Test(jsonRequest("POST", "/api/auth/login", `{"email":"not-an-email","password":""}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRefreshTokenEndpoint(t *testing.T) {
	env := newAuthTestEnv(t, nil)
	_, err := env.auth.Register(context.Background(), "anna@example.com", "hunter2", "Anna")
	require.NoError(t, err)

	loginResp, err := env.app.Test(jsonRequest("POST", "/api/auth/login", `{"email":"anna@example.com","password":"hunter2"}`))
	require.NoError(t, err)
	cookie := refreshCookie(loginResp)
	require.NotNil(t, cookie)

	req := httptest.NewRequest("GET", "/api/auth/refresh-token", nil)
	req.AddCookie(cookie)

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decodeBody(t, resp)["accessToken"])
}

func TestRefreshTokenMissingCookie(t *testing.T) {
	env := newAuthTestEnv(t, nil)

	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/auth/refresh-token", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Refresh token not found", decodeBody(t, resp)["message"])
}

func TestRefreshTokenInvalidCookie(t *testing.T) {
	env := newAuthTestEnv(t, nil)

	req := httptest.NewRequest("GET", "/api/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "not.a.jwt"})

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid refresh token", decodeBody(t, resp)["message"])
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	ctx := context.Background()
	env := newAuthTestEnv(t, nil)
	_, err := env.auth.Register(ctx, "anna@example.com", "hunter2", "Anna")
	require.NoError(t, err)
	_, access, _, err := env.auth.Login(ctx, "anna@example.com", "hunter2")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+access)

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookie := refreshCookie(resp)
	require.NotNil(t, cookie, "logout must clear the refresh cookie")
	assert.Empty(t, cookie.Value)

	// The pair is nulled, so the same still-unexpired token is now refused.
	req = httptest.NewRequest("GET", "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+access)

	resp, err = env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutRequiresToken(t *testing.T) {
	ctx := context.Background()
	env := newAuthTestEnv(t, nil)
	_, err := env.auth.Register(ctx, "anna@example.com", "hunter2", "Anna")
	require.NoError(t, err)
	_, _, refresh, err := env.auth.Login(ctx, "anna@example.com", "hunter2")
	require.NoError(t, err)

	// The token middleware must run before the logout handler: a request
	// without a bearer token is rejected by the middleware, and the stored
	// tokens stay intact.
	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/auth/logout", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "missing authorization", decodeBody(t, resp)["message"])

	_, err = env.auth.Refresh(ctx, refresh)
	assert.NoError(t, err, "an unauthenticated logout attempt must not revoke anything")
}

func TestRegisterUser(t *testing.T) {
	env := newAuthTestEnv(t, nil)

	resp, err := env.app.Test(jsonRequest("POST", "/api/user/register", `{"email":"anna@example.com","password":"hunter2","name":"Anna"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "User created successfully", body["message"])
	assert.Len(t, env.users.Users, 1)
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	env := newAuthTestEnv(t, nil)
	_, err := env.auth.Register(context.Background(), "anna@example.com", "hunter2", "Anna")
	require.NoError(t, err)

	resp, err := env.app.Test(jsonRequest("POST", "/api/user/register", `{"email":"anna@example.com","password":"other","name":"Anna"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	errs := decodeBody(t, resp)["errors"].([]interface{})
	require.Len(t, errs, 1)
	first := errs[0].(map[string]interface{})
	assert.Equal(t, "Email", first["field"])
	assert.Equal(t, "Email address already exists!", first["message"])
}

func TestRegisterUserValidation(t *testing.T) {
	env := newAuthTestEnv(t, nil)

	resp, err := env.app.Test(jsonRequest("POST", "/api/user/register", `{"email":"bad","password":"ab"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	errs := decodeBody(t, resp)["errors"].([]interface{})
	assert.Len(t, errs, 2)
}

func TestSocialLoginRedirects(t *testing.T) {
	providers := port.AuthProviderRegistry{
		"google": &service.FakeAuthProvider{Name: "google"},
	}
	env := newAuthTestEnv(t, providers)

	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/auth/google", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)

	location := resp.Header.Get("Location")
	assert.Contains(t, location, "google.example.com/oauth")
	assert.Contains(t, location, "state=google:")
}

func TestSocialLoginUnknownProvider(t *testing.T) {
	env := newAuthTestEnv(t, port.AuthProviderRegistry{})

	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/auth/github", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSocialCallback(t *testing.T) {
	providers := port.AuthProviderRegistry{
		"google": &service.FakeAuthProvider{
			Name: "google",
			Profile: &domain.SocialProfile{
				Provider:   "google",
				ProviderID: "g-1",
				Email:      "anna@example.com",
				Name:       "Anna",
			},
		},
	}
	env := newAuthTestEnv(t, providers)

	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/auth/google/callback?code=auth-code", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)

	location := resp.Header.Get("Location")
	assert.Contains(t, location, testFrontendURL+"/auth/success?token=")
	require.NotNil(t, refreshCookie(resp))
	assert.Len(t, env.users.Users, 1)
}

func TestSocialCallbackMissingCode(t *testing.T) {
	env := newAuthTestEnv(t, port.AuthProviderRegistry{
		"google": &service.FakeAuthProvider{Name: "google"},
	})

	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/auth/google/callback", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
