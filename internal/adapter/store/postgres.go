package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/QuanTND2497/expense-tracker/internal/domain"
	"github.com/QuanTND2497/expense-tracker/internal/port"
)

const uniqueViolation = "23505"

// PostgresStore handles all relational database operations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// --- Users ---

const userColumns = `id, COALESCE(email, ''), COALESCE(password, ''), name, COALESCE(avatar, ''),
	COALESCE(google_id, ''), COALESCE(facebook_id, ''),
	COALESCE(access_token, ''), COALESCE(refresh_token, ''), created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Password, &u.Name, &u.Avatar,
		&u.GoogleID, &u.FacebookID,
		&u.AccessToken, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user record. Duplicate emails surface as
// port.ErrEmailTaken.
func (s *PostgresStore) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	// Emails are stored as NULL when absent so accounts from providers that
	// supply no email never collide on the unique index.
	query := `INSERT INTO users (id, email, password, name, avatar, google_id, facebook_id)
	          VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))
	          RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, query,
		u.ID, u.Email, u.Password, u.Name, u.Avatar, u.GoogleID, u.FacebookID,
	))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, port.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// FindUserByProviderOrEmail looks a user up by OAuth provider ID first,
// falling back to email.
func (s *PostgresStore) FindUserByProviderOrEmail(ctx context.Context, provider, providerID, email string) (*domain.User, error) {
	column, err := providerColumn(provider)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1 OR email = $2 LIMIT 1`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, providerID, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by provider: %w", err)
	}
	return user, nil
}

// LinkProvider sets the provider ID column on an existing user.
func (s *PostgresStore) LinkProvider(ctx context.Context, userID, provider, providerID string) error {
	column, err := providerColumn(provider)
	if err != nil {
		return err
	}

	query := `UPDATE users SET ` + column + ` = $1, updated_at = NOW() WHERE id = $2`
	_, err = s.db.ExecContext(ctx, query, providerID, userID)
	if err != nil {
		return fmt.Errorf("link provider: %w", err)
	}
	return nil
}

// SetTokens overwrites the stored access/refresh token pair. Empty strings
// store NULL, revoking the corresponding token.
func (s *PostgresStore) SetTokens(ctx context.Context, userID, accessToken, refreshToken string) error {
	query := `UPDATE users SET access_token = NULLIF($1, ''), refresh_token = NULLIF($2, ''), updated_at = NOW()
	          WHERE id = $3`
	_, err := s.db.ExecContext(ctx, query, accessToken, refreshToken, userID)
	if err != nil {
		return fmt.Errorf("set tokens: %w", err)
	}
	return nil
}

// SetAccessToken overwrites only the stored access token.
func (s *PostgresStore) SetAccessToken(ctx context.Context, userID, accessToken string) error {
	query := `UPDATE users SET access_token = NULLIF($1, ''), updated_at = NOW() WHERE id = $2`
	_, err := s.db.ExecContext(ctx, query, accessToken, userID)
	if err != nil {
		return fmt.Errorf("set access token: %w", err)
	}
	return nil
}

func providerColumn(provider string) (string, error) {
	switch provider {
	case "google":
		return "google_id", nil
	case "facebook":
		return "facebook_id", nil
	default:
		return "", fmt.Errorf("unknown provider: %s", provider)
	}
}
