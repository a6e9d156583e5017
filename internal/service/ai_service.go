package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/QuanTND2497/expense-tracker/internal/domain"
	"github.com/QuanTND2497/expense-tracker/internal/port"
)

const chatSystemPrompt = `You are a professional personal finance assistant. ` +
	`You give short, useful advice on personal money management and spending.`

const analysisSystemPrompt = `You are a personal finance assistant. ` +
	`Analyze the user's spending and suggest ways to save money.`

const receiptSystemPrompt = `You are a receipt recognition assistant. ` +
	`Extract the information from the receipt image and return it as structured JSON.`

const receiptUserPrompt = `This is a receipt image. Extract the following: date, ` +
	`merchant/store, list of items (if any), total amount, tax amount (if any) and currency. ` +
	`Return the data as JSON in this shape: {"date": "YYYY-MM-DD", "merchant": "Store name", ` +
	`"items": [{"name": "Item name", "price": 0, "quantity": 0}], "total": 0, "taxAmount": 0, "currency": "USD"}`

// AIService builds prompts for the finance assistant features and proxies
// them to the LLM backend.
type AIService struct {
	ai         port.AIProvider
	categories port.CategoryStore
}

// NewAIService creates a new AI service.
func NewAIService(ai port.AIProvider, categories port.CategoryStore) *AIService {
	return &AIService{ai: ai, categories: categories}
}

// Chat answers a free-form finance question, optionally grounded on the
// user's recent transactions.
func (s *AIService) Chat(ctx context.Context, question string, transactions []domain.Transaction) (string, error) {
	var b strings.Builder
	if len(transactions) > 0 {
		b.WriteString("Your recent transactions:\n")
		for _, t := range transactions {
			kind := "Expense"
			if t.Type == domain.TransactionTypeIncome {
				kind = "Income"
			}
			desc := t.Description
			if desc == "" {
				desc = "N/A"
			}
			fmt.Fprintf(&b, "- Date: %s, Description: %s, Amount: %.2f %s, Type: %s\n",
				t.Date.Format("2006-01-02"), desc, t.Amount, t.Currency, kind)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "User question: %s\n\nAnswer briefly and give concrete advice based on the available information.", question)

	return s.ai.Chat(ctx, chatSystemPrompt, b.String())
}

// AnalyzeSpending summarizes the given transactions per category and asks the
// model for saving suggestions over the requested timeframe.
func (s *AIService) AnalyzeSpending(ctx context.Context, transactions []domain.Transaction, timeframe string) (string, error) {
	ids := make([]string, 0, len(transactions))
	seen := map[string]bool{}
	for _, t := range transactions {
		if !seen[t.CategoryID] {
			seen[t.CategoryID] = true
			ids = append(ids, t.CategoryID)
		}
	}

	categories, err := s.categories.ListCategoriesByIDs(ctx, ids)
	if err != nil {
		return "", err
	}
	names := map[string]string{}
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	categoryTotals := map[string]float64{}
	order := []string{}
	var totalIncome, totalExpense float64
	for _, t := range transactions {
		name, ok := names[t.CategoryID]
		if ok {
			if _, exists := categoryTotals[name]; !exists {
				order = append(order, name)
			}
			categoryTotals[name] += t.Amount
		}
		if t.Type == domain.TransactionTypeIncome {
			totalIncome += t.Amount
		} else {
			totalExpense += t.Amount
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze my spending over the past %s:\n\n", timeframe)
	fmt.Fprintf(&b, "Total income: %.2f\nTotal expenses: %.2f\n\nSpending by category:\n", totalIncome, totalExpense)
	for _, name := range order {
		fmt.Fprintf(&b, "- %s: %.2f\n", name, categoryTotals[name])
	}
	b.WriteString("\nGive me 3-5 suggestions to save money based on this data. " +
		"Focus on the highest-spending categories and opportunities to cut unnecessary expenses.")

	return s.ai.Chat(ctx, analysisSystemPrompt, b.String())
}

// ParseReceipt runs the vision model over a receipt image and parses the
// structured JSON out of the response.
func (s *AIService) ParseReceipt(ctx context.Context, image []byte) (*domain.Receipt, error) {
	encoded := base64.StdEncoding.EncodeToString(image)

	content, err := s.ai.ChatVision(ctx, receiptSystemPrompt, receiptUserPrompt, encoded)
	if err != nil {
		return nil, err
	}

	raw, err := extractJSON(content)
	if err != nil {
		return nil, err
	}

	var receipt domain.Receipt
	if err := json.Unmarshal([]byte(raw), &receipt); err != nil {
		return nil, fmt.Errorf("parse receipt data: %w", err)
	}
	return &receipt, nil
}

var (
	fencedJSONRe = regexp.MustCompile("```json\\n([\\s\\S]*?)\\n```")
	bareJSONRe   = regexp.MustCompile(`\{[\s\S]*\}`)
)

// extractJSON pulls a JSON object out of a model response, preferring a
// fenced code block over a bare object.
func extractJSON(content string) (string, error) {
	if m := fencedJSONRe.FindStringSubmatch(content); m != nil {
		return m[1], nil
	}
	if m := bareJSONRe.FindString(content); m != "" {
		return m, nil
	}
	return "", fmt.Errorf("no JSON found in model response")
}
