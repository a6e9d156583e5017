package port

import (
	"context"
	"time"

	"github.com/QuanTND2497/expense-tracker/internal/domain"
)

// UserStore persists account records. Token updates are plain last-write-wins
// reads-then-writes; two concurrent logins for the same user race and the
// later write silently invalidates the earlier session's tokens.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUserByProviderOrEmail looks a user up by OAuth provider ID first,
	// falling back to email. Returns ErrUserNotFound when neither matches.
	FindUserByProviderOrEmail(ctx context.Context, provider, providerID, email string) (*domain.User, error)

	// LinkProvider sets the provider ID column on an existing user without
	// touching any other field.
	LinkProvider(ctx context.Context, userID, provider, providerID string) error

	// SetTokens overwrites the stored access/refresh token pair. Empty
	// strings store NULL, which revokes the corresponding token.
	SetTokens(ctx context.Context, userID, accessToken, refreshToken string) error

	// SetAccessToken overwrites only the stored access token, leaving the
	// refresh token untouched (used by the refresh flow).
	SetAccessToken(ctx context.Context, userID, accessToken string) error
}

// CategoryStore persists transaction categories.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*domain.Category, error)
	ListCategoriesByIDs(ctx context.Context, ids []string) ([]domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id, name, description string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error)
}

// TransactionStore persists transactions. All queries are scoped to a user.
type TransactionStore interface {
	ListTransactionsByUser(ctx context.Context, userID string) ([]domain.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*domain.Transaction, error)
	CreateTransaction(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	ListTransactionsByDateRange(ctx context.Context, userID string, from, to time.Time) ([]domain.Transaction, error)
	ListTransactionsByCategory(ctx context.Context, userID, categoryID string) ([]domain.Transaction, error)
}
