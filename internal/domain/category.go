package domain

import "time"

// Category groups transactions. Categories seeded at startup carry
// IsDefault=true and can be neither modified nor deleted.
type Category struct {
	ID          string    `json:"id"          db:"id"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	IsDefault   bool      `json:"is_default"  db:"is_default"`
	CreatedAt   time.Time `json:"created_at"  db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"  db:"updated_at"`
}

// DefaultCategories are seeded on startup when missing. Seeding an already
// existing category is a no-op, not an error.
var DefaultCategories = []Category{
	{Name: "Food", Description: "Expenses related to food and groceries", IsDefault: true},
	{Name: "Transportation", Description: "Expenses related to transportation and travel", IsDefault: true},
	{Name: "Bills", Description: "Expenses related to bills and utilities", IsDefault: true},
	{Name: "Entertainment", Description: "Expenses related to entertainment and leisure activities", IsDefault: true},
}
