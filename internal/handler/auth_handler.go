package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/QuanTND2497/expense-tracker/internal/middleware"
	"github.com/QuanTND2497/expense-tracker/internal/port"
	"github.com/QuanTND2497/expense-tracker/internal/service"
)

const refreshCookieName = "refresh_token"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	auth          *service.AuthService
	frontendURL   string
	refreshTTL    time.Duration
	secureCookies bool
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth *service.AuthService, frontendURL string, refreshTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		auth:          auth,
		frontendURL:   frontendURL,
		refreshTTL:    refreshTTL,
		secureCookies: secureCookies,
	}
}

// Register sets up auth routes. Logout sits behind the token middleware so a
// revoked or superseded access token cannot log anyone out. Handlers run in
// registration order, so tokenAuth must precede the logout handler.
func (h *AuthHandler) Register(app *fiber.App, tokenAuth fiber.Handler) {
	auth := app.Group("/api/auth")
	auth.Post("/login", h.Login)
	auth.Get("/logout", tokenAuth, h.Logout)
	auth.Get("/refresh-token", h.RefreshToken)
	auth.Get("/:provider", h.SocialLogin)
	auth.Get("/:provider/callback", h.SocialCallback)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login validates credentials, issues a token pair, and sets the refresh
// token as an http-only cookie. Bad credentials always get the same generic
// 401, whether the email is unregistered or the password was wrong.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body loginRequest
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
	}
	if errs := validateStruct(body); errs != nil {
		return badRequest(c, errs)
	}

	user, access, refresh, err := h.auth.Login(c.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, port.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	h.setRefreshCookie(c, refresh)

	return c.JSON(fiber.Map{
		"message":     "Logged in successfully",
		"user":        user,
		"accessToken": access,
	})
}

// Logout nulls the stored tokens and clears the refresh cookie.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.auth.Logout(c.Context(), uc.UserID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	h.clearRefreshCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// RefreshToken exchanges a valid refresh-token cookie for a new access token.
// The refresh token itself is left unchanged.
func (h *AuthHandler) RefreshToken(c fiber.Ctx) error {
	cookie := c.Cookies(refreshCookieName)
	if cookie == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Refresh token not found"})
	}

	access, err := h.auth.Refresh(c.Context(), cookie)
	if err != nil {
		switch {
		case errors.Is(err, port.ErrTokenExpired):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Refresh token expired"})
		case errors.Is(err, port.ErrInvalidRefreshToken):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid refresh token"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(fiber.Map{
		"message":     "Token refreshed successfully",
		"accessToken": access,
	})
}

// SocialLogin redirects to the OAuth2 provider's consent screen.
func (h *AuthHandler) SocialLogin(c fiber.Ctx) error {
	provider := c.Params("provider")
	state := provider + ":" + generateState()

	authURL, err := h.auth.GetAuthURL(provider, state)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	return c.Redirect().Status(fiber.StatusFound).To(authURL)
}

// SocialCallback terminates the OAuth2 flow in the same issuance logic as a
// password login, then hands the access token to the frontend.
// TODO: verify the state parameter against the value issued in SocialLogin.
func (h *AuthHandler) SocialCallback(c fiber.Ctx) error {
	provider := c.Params("provider")
	code := c.Query("code")

	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "missing authorization code"})
	}

	_, access, refresh, err := h.auth.HandleCallback(c.Context(), provider, code)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	h.setRefreshCookie(c, refresh)

	return c.Redirect().Status(fiber.StatusFound).To(h.frontendURL + "/auth/success?token=" + access)
}

func (h *AuthHandler) setRefreshCookie(c fiber.Ctx, refresh string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    refresh,
		Path:     "/",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HTTPOnly: true,
		Secure:   h.secureCookies,
	})
}

func (h *AuthHandler) clearRefreshCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.secureCookies,
	})
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
