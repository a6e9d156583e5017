package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/QuanTND2497/expense-tracker/internal/port"
	"github.com/QuanTND2497/expense-tracker/internal/service"
)

// UserHandler handles account registration.
type UserHandler struct {
	auth *service.AuthService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(auth *service.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// Register sets up user routes.
func (h *UserHandler) Register(app *fiber.App) {
	user := app.Group("/api/user")
	user.Post("/register", h.RegisterUser)
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=3"`
	Name     string `json:"name"`
}

// RegisterUser creates a local-password account.
func (h *UserHandler) RegisterUser(c fiber.Ctx) error {
	var body registerRequest
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
	}
	if errs := validateStruct(body); errs != nil {
		return badRequest(c, errs)
	}

	user, err := h.auth.Register(c.Context(), body.Email, body.Password, body.Name)
	if err != nil {
		if errors.Is(err, port.ErrEmailTaken) {
			return badRequest(c, []fieldError{{Field: "Email", Message: "Email address already exists!"}})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    user,
	})
}
