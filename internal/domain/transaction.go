package domain

import "time"

// Transaction types.
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// Transaction is a single income or expense entry owned by a user.
type Transaction struct {
	ID          string    `json:"id"          db:"id"`
	UserID      string    `json:"user_id"     db:"user_id"`
	CategoryID  string    `json:"category_id" db:"category_id"`
	Amount      float64   `json:"amount"      db:"amount"`
	Currency    string    `json:"currency"    db:"currency"`
	Type        string    `json:"type"        db:"type"` // income or expense
	Date        time.Time `json:"date"        db:"date"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at"  db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"  db:"updated_at"`

	Category *Category `json:"category,omitempty"`
}

// TransactionPatch carries optional fields for a partial update.
// Nil fields are left unchanged.
type TransactionPatch struct {
	Amount      *float64
	Currency    *string
	CategoryID  *string
	Date        *time.Time
	Description *string
	Type        *string
}

// CategoryTotal is the per-category slice of a stats report.
type CategoryTotal struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
}

// TransactionStats summarizes a user's transactions over a period.
type TransactionStats struct {
	Period           string          `json:"period"`
	Total            float64         `json:"total"`
	CategorySummary  []CategoryTotal `json:"categorySummary"`
	TransactionCount int             `json:"transactionCount"`
}
