package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/QuanTND2497/expense-tracker/internal/domain"
	"github.com/QuanTND2497/expense-tracker/internal/port"
)

const transactionColumns = `t.id, t.user_id, t.category_id, t.amount, t.currency, t.type,
	t.date, COALESCE(t.description, ''), t.created_at, t.updated_at,
	c.id, c.name, COALESCE(c.description, ''), c.is_default, c.created_at, c.updated_at`

const transactionFrom = ` FROM transactions t JOIN categories c ON c.id = t.category_id`

func scanTransaction(row interface{ Scan(...interface{}) error }) (*domain.Transaction, error) {
	var t domain.Transaction
	var c domain.Category
	err := row.Scan(
		&t.ID, &t.UserID, &t.CategoryID, &t.Amount, &t.Currency, &t.Type,
		&t.Date, &t.Description, &t.CreatedAt, &t.UpdatedAt,
		&c.ID, &c.Name, &c.Description, &c.IsDefault, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Category = &c
	return &t, nil
}

func (s *PostgresStore) queryTransactions(ctx context.Context, query string, args ...interface{}) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

// ListTransactionsByUser returns all transactions for a user, newest first.
func (s *PostgresStore) ListTransactionsByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + transactionFrom + ` WHERE t.user_id = $1 ORDER BY t.date DESC`
	return s.queryTransactions(ctx, query, userID)
}

// GetTransactionByID returns a transaction by its ID.
func (s *PostgresStore) GetTransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + transactionFrom + ` WHERE t.id = $1`

	t, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// CreateTransaction inserts a new transaction record.
func (s *PostgresStore) CreateTransaction(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Type == "" {
		t.Type = domain.TransactionTypeExpense
	}

	query := `INSERT INTO transactions (id, user_id, category_id, amount, currency, type, date, description)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))`

	_, err := s.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.CategoryID, t.Amount, t.Currency, t.Type, t.Date, t.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	return s.GetTransactionByID(ctx, t.ID)
}

// UpdateTransaction applies the non-nil fields of the patch.
func (s *PostgresStore) UpdateTransaction(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}
	idx := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if patch.Amount != nil {
		add("amount", *patch.Amount)
	}
	if patch.Currency != nil {
		add("currency", *patch.Currency)
	}
	if patch.CategoryID != nil {
		add("category_id", *patch.CategoryID)
	}
	if patch.Date != nil {
		add("date", *patch.Date)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Type != nil {
		add("type", *patch.Type)
	}

	query := fmt.Sprintf(`UPDATE transactions SET %s WHERE id = $%d`, strings.Join(sets, ", "), idx)
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, port.ErrTransactionNotFound
	}

	return s.GetTransactionByID(ctx, id)
}

// DeleteTransaction removes a transaction by ID.
func (s *PostgresStore) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrTransactionNotFound
	}
	return nil
}

// ListTransactionsByDateRange returns a user's transactions within [from, to],
// newest first.
func (s *PostgresStore) ListTransactionsByDateRange(ctx context.Context, userID string, from, to time.Time) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + transactionFrom +
		` WHERE t.user_id = $1 AND t.date >= $2 AND t.date <= $3 ORDER BY t.date DESC`
	return s.queryTransactions(ctx, query, userID, from, to)
}

// ListTransactionsByCategory returns a user's transactions for one category,
// newest first.
func (s *PostgresStore) ListTransactionsByCategory(ctx context.Context, userID, categoryID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + transactionFrom +
		` WHERE t.user_id = $1 AND t.category_id = $2 ORDER BY t.date DESC`
	return s.queryTransactions(ctx, query, userID, categoryID)
}
