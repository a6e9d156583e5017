package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuanTND2497/expense-tracker/internal/domain"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{
			name:    "fenced block",
			content: "Here you go:\n```json\n{\"total\": 42}\n```\nAnything else?",
			want:    `{"total": 42}`,
		},
		{
			name:    "bare object",
			content: `The result is {"total": 42} as requested.`,
			want:    `{"total": 42}`,
		},
		{
			name:    "fenced preferred over bare",
			content: "{\"ignored\": true}\n```json\n{\"total\": 1}\n```",
			want:    `{"total": 1}`,
		},
		{
			name:    "no json",
			content: "Sorry, I could not read the receipt.",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractJSON(tc.content)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestChatIncludesTransactionContext(t *testing.T) {
	ai := &FakeAIProvider{Response: "Spend less on takeout."}
	svc := NewAIService(ai, NewFakeCategoryStore())

	transactions := []domain.Transaction{
		{
			Amount:      12.50,
			Currency:    "USD",
			Type:        domain.TransactionTypeExpense,
			Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Description: "Lunch",
		},
		{
			Amount:   3000,
			Currency: "USD",
			Type:     domain.TransactionTypeIncome,
			Date:     time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	answer, err := svc.Chat(context.Background(), "How do I save money?", transactions)
	require.NoError(t, err)
	assert.Equal(t, "Spend less on takeout.", answer)

	assert.Contains(t, ai.LastUser, "User question: How do I save money?")
	assert.Contains(t, ai.LastUser, "- Date: 2025-06-01, Description: Lunch, Amount: 12.50 USD, Type: Expense")
	assert.Contains(t, ai.LastUser, "- Date: 2025-06-02, Description: N/A, Amount: 3000.00 USD, Type: Income")
}

func TestChatWithoutTransactions(t *testing.T) {
	ai := &FakeAIProvider{Response: "Generic advice."}
	svc := NewAIService(ai, NewFakeCategoryStore())

	_, err := svc.Chat(context.Background(), "What is a budget?", nil)
	require.NoError(t, err)
	assert.NotContains(t, ai.LastUser, "Your recent transactions")
}

func TestAnalyzeSpendingBuildsCategoryBreakdown(t *testing.T) {
	ai := &FakeAIProvider{Response: "Cut the bills."}
	categories := NewFakeCategoryStore()
	food, err := categories.CreateCategory(context.Background(), &domain.Category{Name: "Food"})
	require.NoError(t, err)
	bills, err := categories.CreateCategory(context.Background(), &domain.Category{Name: "Bills"})
	require.NoError(t, err)

	svc := NewAIService(ai, categories)

	transactions := []domain.Transaction{
		{CategoryID: food.ID, Amount: 80, Type: domain.TransactionTypeExpense},
		{CategoryID: food.ID, Amount: 20, Type: domain.TransactionTypeExpense},
		{CategoryID: bills.ID, Amount: 55, Type: domain.TransactionTypeExpense},
		{CategoryID: food.ID, Amount: 2500, Type: domain.TransactionTypeIncome},
	}

	_, err = svc.AnalyzeSpending(context.Background(), transactions, "month")
	require.NoError(t, err)

	assert.Contains(t, ai.LastUser, "over the past month")
	assert.Contains(t, ai.LastUser, "Total income: 2500.00")
	assert.Contains(t, ai.LastUser, "Total expenses: 155.00")
	assert.Contains(t, ai.LastUser, "- Food: 2600.00")
	assert.Contains(t, ai.LastUser, "- Bills: 55.00")
}

func TestParseReceipt(t *testing.T) {
	ai := &FakeAIProvider{Response: "```json\n" +
		`{"date": "2025-06-01", "merchant": "Corner Store", ` +
		`"items": [{"name": "Milk", "price": 2.5, "quantity": 2}], ` +
		`"total": 5.0, "taxAmount": 0.4, "currency": "USD"}` +
		"\n```"}
	svc := NewAIService(ai, NewFakeCategoryStore())

	receipt, err := svc.ParseReceipt(context.Background(), []byte("fake-image-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "Corner Store", receipt.Merchant)
	assert.Equal(t, "2025-06-01", receipt.Date)
	assert.Equal(t, 5.0, receipt.Total)
	assert.Equal(t, 0.4, receipt.TaxAmount)
	assert.Equal(t, "USD", receipt.Currency)
	require.Len(t, receipt.Items, 1)
	assert.Equal(t, "Milk", receipt.Items[0].Name)
	assert.Equal(t, 2.0, receipt.Items[0].Quantity)
	assert.Greater(t, ai.LastImageBytes, 0, "image must be sent base64 encoded")
}

func TestParseReceiptNoJSONInResponse(t *testing.T) {
	ai := &FakeAIProvider{Response: "I cannot read this image."}
	svc := NewAIService(ai, NewFakeCategoryStore())

	_, err := svc.ParseReceipt(context.Background(), []byte("fake"))
	assert.Error(t, err)
}
