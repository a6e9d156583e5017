package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/QuanTND2497/expense-tracker/internal/domain"
	"github.com/QuanTND2497/expense-tracker/internal/port"
	"github.com/QuanTND2497/expense-tracker/internal/token"
)

// TokenAuth validates the bearer access token and injects a UserContext into
// the request context. Beyond signature and expiry, the token must equal the
// user's currently stored access token: logout nulls the stored pair and a
// second login overwrites it, so stale tokens are rejected even before they
// expire (single-slot revocation).
func TokenAuth(issuer *token.Issuer, users port.UserStore) fiber.Handler {
	return func(c fiber.Ctx) error {
		bearer := BearerToken(c)
		if bearer == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "missing authorization",
			})
		}

		claims, err := issuer.VerifyAccess(bearer)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": err.Error(),
			})
		}

		user, err := users.GetUserByID(c.Context(), claims.Subject)
		if err != nil || user.AccessToken != bearer {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": port.ErrTokenRevoked.Error(),
			})
		}

		c.Locals("user", &domain.UserContext{
			UserID: user.ID,
			Email:  user.Email,
			Name:   user.Name,
		})

		return c.Next()
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// GetUserContext extracts the UserContext from Fiber locals.
func GetUserContext(c fiber.Ctx) *domain.UserContext {
	u, ok := c.Locals("user").(*domain.UserContext)
	if !ok {
		return nil
	}
	return u
}
