package service

import (
	"context"
	"time"

	"github.com/QuanTND2497/expense-tracker/internal/domain"
	"github.com/QuanTND2497/expense-tracker/internal/port"
)

// TransactionService computes aggregate views over a user's transactions.
type TransactionService struct {
	transactions port.TransactionStore
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(transactions port.TransactionStore) *TransactionService {
	return &TransactionService{transactions: transactions}
}

// Stats sums a user's transactions over the given period and breaks the total
// down per category. Unknown periods fall back to "month".
func (s *TransactionService) Stats(ctx context.Context, userID, period string) (*domain.TransactionStats, error) {
	now := time.Now()
	from := periodStart(now, period)

	transactions, err := s.transactions.ListTransactionsByDateRange(ctx, userID, from, now)
	if err != nil {
		return nil, err
	}

	stats := aggregateStats(transactions)
	stats.Period = period
	return stats, nil
}

func periodStart(now time.Time, period string) time.Time {
	switch period {
	case "day":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case "week":
		return now.AddDate(0, 0, -7)
	case "year":
		return now.AddDate(-1, 0, 0)
	default: // month
		return now.AddDate(0, -1, 0)
	}
}

// aggregateStats is a single pass over the fetched transactions. Percentages
// are zero for every category when the total is zero.
func aggregateStats(transactions []domain.Transaction) *domain.TransactionStats {
	var total float64
	totals := map[string]*domain.CategoryTotal{}
	order := []string{}

	for _, t := range transactions {
		total += t.Amount

		ct, ok := totals[t.CategoryID]
		if !ok {
			name := ""
			if t.Category != nil {
				name = t.Category.Name
			}
			ct = &domain.CategoryTotal{ID: t.CategoryID, Name: name}
			totals[t.CategoryID] = ct
			order = append(order, t.CategoryID)
		}
		ct.Total += t.Amount
	}

	summary := make([]domain.CategoryTotal, 0, len(order))
	for _, id := range order {
		ct := totals[id]
		if total > 0 {
			ct.Percentage = ct.Total / total * 100
		}
		summary = append(summary, *ct)
	}

	return &domain.TransactionStats{
		Total:            total,
		CategorySummary:  summary,
		TransactionCount: len(transactions),
	}
}
