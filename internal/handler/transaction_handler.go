package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/QuanTND2497/expense-tracker/internal/domain"
	"github.com/QuanTND2497/expense-tracker/internal/middleware"
	"github.com/QuanTND2497/expense-tracker/internal/port"
	"github.com/QuanTND2497/expense-tracker/internal/service"
)

// TransactionHandler handles transaction endpoints. All operations are scoped
// to the authenticated user.
type TransactionHandler struct {
	transactions port.TransactionStore
	categories   port.CategoryStore
	stats        *service.TransactionService
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(transactions port.TransactionStore, categories port.CategoryStore, stats *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, categories: categories, stats: stats}
}

// Register sets up transaction routes. Static segments are registered before
// the :id parameter route.
func (h *TransactionHandler) Register(router fiber.Router) {
	transactions := router.Group("/transactions")
	transactions.Get("/", h.List)
	transactions.Get("/stats", h.Stats)
	transactions.Get("/date-range", h.ListByDateRange)
	transactions.Get("/category/:categoryId", h.ListByCategory)
	transactions.Get("/:id", h.Get)
	transactions.Post("/", h.Create)
	transactions.Put("/:id", h.Update)
	transactions.Delete("/:id", h.Delete)
}

type createTransactionRequest struct {
	Amount      *float64 `json:"amount" validate:"required"`
	Currency    string   `json:"currency" validate:"required,len=3"`
	CategoryID  string   `json:"categoryId" validate:"required"`
	Date        string   `json:"date" validate:"required"`
	Description string   `json:"description"`
	Type        string   `json:"type" validate:"omitempty,oneof=income expense"`
}

type updateTransactionRequest struct {
	Amount      *float64 `json:"amount"`
	Currency    *string  `json:"currency" validate:"omitempty,len=3"`
	CategoryID  *string  `json:"categoryId"`
	Date        *string  `json:"date"`
	Description *string  `json:"description"`
	Type        *string  `json:"type" validate:"omitempty,oneof=income expense"`
}

// List returns all transactions for the authenticated user, newest first.
func (h *TransactionHandler) List(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	transactions, err := h.transactions.ListTransactionsByUser(c.Context(), uc.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"data": transactions})
}

// Stats summarizes the user's transactions over a period.
func (h *TransactionHandler) Stats(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	period := c.Query("period", "month")
	switch period {
	case "day", "week", "month", "year":
	default:
		return badRequest(c, []fieldError{{Field: "period", Message: "Period must be one of: day, week, month, year"}})
	}

	stats, err := h.stats.Stats(c.Context(), uc.UserID, period)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"data": stats})
}

// ListByDateRange returns the user's transactions within [startDate, endDate].
func (h *TransactionHandler) ListByDateRange(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if startDate == "" || endDate == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Start date and end date are required"})
	}

	from, err := parseDate(startDate)
	if err != nil {
		return badRequest(c, []fieldError{{Field: "startDate", Message: "Start date must be in ISO format (YYYY-MM-DD)"}})
	}
	to, err := parseDate(endDate)
	if err != nil {
		return badRequest(c, []fieldError{{Field: "endDate", Message: "End date must be in ISO format (YYYY-MM-DD)"}})
	}

	transactions, err := h.transactions.ListTransactionsByDateRange(c.Context(), uc.UserID, from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"data": transactions})
}

// ListByCategory returns the user's transactions for one category.
func (h *TransactionHandler) ListByCategory(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	categoryID := c.Params("categoryId")
	if _, err := h.categories.GetCategoryByID(c.Context(), categoryID); err != nil {
		if errors.Is(err, port.ErrCategoryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Category not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	transactions, err := h.transactions.ListTransactionsByCategory(c.Context(), uc.UserID, categoryID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"data": transactions})
}

// Get returns one transaction, enforcing ownership.
func (h *TransactionHandler) Get(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	transaction, err := h.transactions.GetTransactionByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, port.ErrTransactionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Transaction not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if transaction.UserID != uc.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Unauthorized access to this transaction"})
	}

	return c.JSON(fiber.Map{"data": transaction})
}

// Create adds a new transaction for the authenticated user.
func (h *TransactionHandler) Create(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	var body createTransactionRequest
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
	}
	if errs := validateStruct(body); errs != nil {
		return badRequest(c, errs)
	}

	date, err := parseDate(body.Date)
	if err != nil {
		return badRequest(c, []fieldError{{Field: "date", Message: "Date must be in ISO format (YYYY-MM-DD)"}})
	}

	transaction, err := h.transactions.CreateTransaction(c.Context(), &domain.Transaction{
		UserID:      uc.UserID,
		CategoryID:  body.CategoryID,
		Amount:      *body.Amount,
		Currency:    body.Currency,
		Type:        body.Type,
		Date:        date,
		Description: body.Description,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error creating transaction"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": transaction})
}

// Update applies a partial update, enforcing ownership.
func (h *TransactionHandler) Update(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	var body updateTransactionRequest
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
	}
	if errs := validateStruct(body); errs != nil {
		return badRequest(c, errs)
	}

	existing, err := h.transactions.GetTransactionByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, port.ErrTransactionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Transaction not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if existing.UserID != uc.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Not authorized to update this transaction"})
	}

	patch := domain.TransactionPatch{
		Amount:      body.Amount,
		Currency:    body.Currency,
		CategoryID:  body.CategoryID,
		Description: body.Description,
		Type:        body.Type,
	}
	if body.Date != nil {
		date, err := parseDate(*body.Date)
		if err != nil {
			return badRequest(c, []fieldError{{Field: "date", Message: "Date must be in ISO format (YYYY-MM-DD)"}})
		}
		patch.Date = &date
	}

	transaction, err := h.transactions.UpdateTransaction(c.Context(), existing.ID, patch)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error updating transaction"})
	}

	return c.JSON(fiber.Map{"data": transaction})
}

// Delete removes a transaction, enforcing ownership.
func (h *TransactionHandler) Delete(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	existing, err := h.transactions.GetTransactionByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, port.ErrTransactionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Transaction not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if existing.UserID != uc.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Unauthorized access to this transaction"})
	}

	if err := h.transactions.DeleteTransaction(c.Context(), existing.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Transaction deleted successfully"})
}

// parseDate accepts full RFC 3339 timestamps or plain YYYY-MM-DD dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
