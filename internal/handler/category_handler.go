package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/QuanTND2497/expense-tracker/internal/domain"
	"github.com/QuanTND2497/expense-tracker/internal/port"
)

// CategoryHandler handles category CRUD endpoints.
type CategoryHandler struct {
	categories port.CategoryStore
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categories port.CategoryStore) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// Register sets up category routes.
func (h *CategoryHandler) Register(router fiber.Router) {
	categories := router.Group("/categories")
	categories.Get("/", h.List)
	categories.Get("/:id", h.Get)
	categories.Post("/", h.Create)
	categories.Put("/:id", h.Update)
	categories.Delete("/:id", h.Delete)
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Description string `json:"description" validate:"omitempty,max=200"`
}

// List returns all categories, newest first.
func (h *CategoryHandler) List(c fiber.Ctx) error {
	categories, err := h.categories.ListCategories(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// Get returns a category by ID.
func (h *CategoryHandler) Get(c fiber.Ctx) error {
	category, err := h.categories.GetCategoryByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, port.ErrCategoryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Category not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"category": category})
}

// Create adds a user-defined category.
func (h *CategoryHandler) Create(c fiber.Ctx) error {
	var body categoryRequest
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
	}
	if errs := validateStruct(body); errs != nil {
		return badRequest(c, errs)
	}

	category, err := h.categories.CreateCategory(c.Context(), &domain.Category{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Category created successfully",
		"category": category,
	})
}

// Update modifies a non-default category.
func (h *CategoryHandler) Update(c fiber.Ctx) error {
	var body categoryRequest
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
	}
	if errs := validateStruct(body); errs != nil {
		return badRequest(c, errs)
	}

	existing, err := h.categories.GetCategoryByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, port.ErrCategoryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Category not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if existing.IsDefault {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message":  "Default categories cannot be modified",
			"category": existing,
		})
	}

	category, err := h.categories.UpdateCategory(c.Context(), existing.ID, body.Name, body.Description)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message":  "Category updated successfully",
		"category": category,
	})
}

// Delete removes a non-default category that has no transactions.
func (h *CategoryHandler) Delete(c fiber.Ctx) error {
	existing, err := h.categories.GetCategoryByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, port.ErrCategoryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Category not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if existing.IsDefault {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message":  "Default categories cannot be deleted",
			"category": existing,
		})
	}

	count, err := h.categories.CountTransactionsByCategory(c.Context(), existing.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if count > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":          "Cannot delete category with associated transactions",
			"transactionCount": count,
		})
	}

	if err := h.categories.DeleteCategory(c.Context(), existing.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Category deleted successfully"})
}
