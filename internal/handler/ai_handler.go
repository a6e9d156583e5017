package handler

import (
	"context"
	"io"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/QuanTND2497/expense-tracker/internal/domain"
	"github.com/QuanTND2497/expense-tracker/internal/service"
)

const aiTimeout = 2 * time.Minute

// AIHandler exposes the finance assistant endpoints: chat, spending analysis
// and receipt recognition.
type AIHandler struct {
	ai *service.AIService
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(ai *service.AIService) *AIHandler {
	return &AIHandler{ai: ai}
}

// Register sets up AI routes.
func (h *AIHandler) Register(router fiber.Router) {
	ai := router.Group("/ai")
	ai.Post("/chat", h.Chat)
	ai.Post("/analyze", h.AnalyzeSpending)
	ai.Post("/receipt", h.ParseReceipt)
}

// Chat answers a finance question grounded on the transactions the client
// sends along.
func (h *AIHandler) Chat(c fiber.Ctx) error {
	var body struct {
		Question     string               `json:"question"`
		Transactions []domain.Transaction `json:"transactions"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
	}
	if body.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Question must not be empty"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), aiTimeout)
	defer cancel()

	response, err := h.ai.Chat(ctx, body.Question, body.Transactions)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error processing chat request"})
	}

	return c.JSON(fiber.Map{"response": response})
}

// AnalyzeSpending asks the model for saving suggestions over a timeframe.
func (h *AIHandler) AnalyzeSpending(c fiber.Ctx) error {
	var body struct {
		Transactions []domain.Transaction `json:"transactions"`
		Timeframe    string               `json:"timeframe"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
	}
	if body.Transactions == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid transaction data"})
	}
	switch body.Timeframe {
	case "week", "month", "year":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid timeframe"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), aiTimeout)
	defer cancel()

	analysis, err := h.ai.AnalyzeSpending(ctx, body.Transactions, body.Timeframe)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error processing spending analysis"})
	}

	return c.JSON(fiber.Map{"analysis": analysis})
}

// ParseReceipt extracts structured data from an uploaded receipt image.
func (h *AIHandler) ParseReceipt(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No image file uploaded"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Context(), aiTimeout)
	defer cancel()

	receipt, err := h.ai.ParseReceipt(ctx, image)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Could not extract data from image"})
	}

	return c.JSON(fiber.Map{"parsedData": receipt})
}
