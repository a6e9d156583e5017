package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/QuanTND2497/expense-tracker/internal/domain"
	"github.com/QuanTND2497/expense-tracker/internal/port"
)

// In-memory fakes used by tests across packages. They implement the port
// store interfaces with last-write-wins semantics, mirroring the real store.

// FakeUserStore is an in-memory port.UserStore.
type FakeUserStore struct {
	mu    sync.Mutex
	seq   int
	Users map[string]*domain.User
}

// NewFakeUserStore creates an empty fake user store.
func NewFakeUserStore() *FakeUserStore {
	return &FakeUserStore{Users: map[string]*domain.User{}}
}

func (s *FakeUserStore) CreateUser(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.Users {
		if existing.Email == u.Email && u.Email != "" {
			return nil, port.ErrEmailTaken
		}
	}

	s.seq++
	clone := *u
	if clone.ID == "" {
		clone.ID = "user-" + strconv.Itoa(s.seq)
	}
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	s.Users[clone.ID] = &clone

	out := clone
	return &out, nil
}

func (s *FakeUserStore) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.Users[id]
	if !ok {
		return nil, port.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (s *FakeUserStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.Users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, port.ErrUserNotFound
}

func (s *FakeUserStore) FindUserByProviderOrEmail(_ context.Context, provider, providerID, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.Users {
		id := u.GoogleID
		if provider == "facebook" {
			id = u.FacebookID
		}
		if id == providerID && providerID != "" {
			out := *u
			return &out, nil
		}
	}
	for _, u := range s.Users {
		if u.Email == email && email != "" {
			out := *u
			return &out, nil
		}
	}
	return nil, port.ErrUserNotFound
}

func (s *FakeUserStore) LinkProvider(_ context.Context, userID, provider, providerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.Users[userID]
	if !ok {
		return port.ErrUserNotFound
	}
	if provider == "facebook" {
		u.FacebookID = providerID
	} else {
		u.GoogleID = providerID
	}
	return nil
}

func (s *FakeUserStore) SetTokens(_ context.Context, userID, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.Users[userID]
	if !ok {
		return port.ErrUserNotFound
	}
	u.AccessToken = accessToken
	u.RefreshToken = refreshToken
	return nil
}

func (s *FakeUserStore) SetAccessToken(_ context.Context, userID, accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.Users[userID]
	if !ok {
		return port.ErrUserNotFound
	}
	u.AccessToken = accessToken
	return nil
}

// FakeCategoryStore is an in-memory port.CategoryStore.
type FakeCategoryStore struct {
	mu                sync.Mutex
	seq               int
	Categories        map[string]*domain.Category
	TransactionCounts map[string]int
}

// NewFakeCategoryStore creates an empty fake category store.
func NewFakeCategoryStore() *FakeCategoryStore {
	return &FakeCategoryStore{
		Categories:        map[string]*domain.Category{},
		TransactionCounts: map[string]int{},
	}
}

func (s *FakeCategoryStore) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Category
	for _, c := range s.Categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *FakeCategoryStore) GetCategoryByID(_ context.Context, id string) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.Categories[id]
	if !ok {
		return nil, port.ErrCategoryNotFound
	}
	out := *c
	return &out, nil
}

func (s *FakeCategoryStore) ListCategoriesByIDs(_ context.Context, ids []string) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Category
	for _, id := range ids {
		if c, ok := s.Categories[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *FakeCategoryStore) CreateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	clone := *c
	if clone.ID == "" {
		clone.ID = "category-" + strconv.Itoa(s.seq)
	}
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	s.Categories[clone.ID] = &clone

	out := clone
	return &out, nil
}

func (s *FakeCategoryStore) UpdateCategory(_ context.Context, id, name, description string) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.Categories[id]
	if !ok {
		return nil, port.ErrCategoryNotFound
	}
	c.Name = name
	c.Description = description
	c.UpdatedAt = time.Now()
	out := *c
	return &out, nil
}

func (s *FakeCategoryStore) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Categories[id]; !ok {
		return port.ErrCategoryNotFound
	}
	delete(s.Categories, id)
	return nil
}

func (s *FakeCategoryStore) CountTransactionsByCategory(_ context.Context, categoryID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.TransactionCounts[categoryID], nil
}

// FakeTransactionStore is an in-memory port.TransactionStore.
type FakeTransactionStore struct {
	mu           sync.Mutex
	seq          int
	Transactions map[string]*domain.Transaction
}

// NewFakeTransactionStore creates an empty fake transaction store.
func NewFakeTransactionStore() *FakeTransactionStore {
	return &FakeTransactionStore{Transactions: map[string]*domain.Transaction{}}
}

func (s *FakeTransactionStore) list(match func(*domain.Transaction) bool) []domain.Transaction {
	var out []domain.Transaction
	for _, t := range s.Transactions {
		if match(t) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (s *FakeTransactionStore) ListTransactionsByUser(_ context.Context, userID string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(t *domain.Transaction) bool { return t.UserID == userID }), nil
}

func (s *FakeTransactionStore) GetTransactionByID(_ context.Context, id string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.Transactions[id]
	if !ok {
		return nil, port.ErrTransactionNotFound
	}
	out := *t
	return &out, nil
}

func (s *FakeTransactionStore) CreateTransaction(_ context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	clone := *t
	if clone.ID == "" {
		clone.ID = "transaction-" + strconv.Itoa(s.seq)
	}
	if clone.Type == "" {
		clone.Type = domain.TransactionTypeExpense
	}
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	s.Transactions[clone.ID] = &clone

	out := clone
	return &out, nil
}

func (s *FakeTransactionStore) UpdateTransaction(_ context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.Transactions[id]
	if !ok {
		return nil, port.ErrTransactionNotFound
	}
	if patch.Amount != nil {
		t.Amount = *patch.Amount
	}
	if patch.Currency != nil {
		t.Currency = *patch.Currency
	}
	if patch.CategoryID != nil {
		t.CategoryID = *patch.CategoryID
	}
	if patch.Date != nil {
		t.Date = *patch.Date
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Type != nil {
		t.Type = *patch.Type
	}
	t.UpdatedAt = time.Now()

	out := *t
	return &out, nil
}

func (s *FakeTransactionStore) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Transactions[id]; !ok {
		return port.ErrTransactionNotFound
	}
	delete(s.Transactions, id)
	return nil
}

func (s *FakeTransactionStore) ListTransactionsByDateRange(_ context.Context, userID string, from, to time.Time) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(t *domain.Transaction) bool {
		return t.UserID == userID && !t.Date.Before(from) && !t.Date.After(to)
	}), nil
}

func (s *FakeTransactionStore) ListTransactionsByCategory(_ context.Context, userID, categoryID string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(t *domain.Transaction) bool {
		return t.UserID == userID && t.CategoryID == categoryID
	}), nil
}

// FakeAIProvider is a scripted port.AIProvider that records the prompts it
// receives.
type FakeAIProvider struct {
	Response       string
	Err            error
	LastSystem     string
	LastUser       string
	LastImageBytes int
}

func (f *FakeAIProvider) ModelName() string { return "fake-model" }

func (f *FakeAIProvider) Chat(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.LastSystem = systemPrompt
	f.LastUser = userPrompt
	return f.Response, f.Err
}

func (f *FakeAIProvider) ChatVision(_ context.Context, systemPrompt, userPrompt, imageBase64 string) (string, error) {
	f.LastSystem = systemPrompt
	f.LastUser = userPrompt
	f.LastImageBytes = len(imageBase64)
	return f.Response, f.Err
}

// FakeAuthProvider is a scripted port.AuthProvider.
type FakeAuthProvider struct {
	Name    string
	Profile *domain.SocialProfile
	Err     error
}

func (f *FakeAuthProvider) ProviderName() string { return f.Name }

func (f *FakeAuthProvider) AuthURL(state string) string {
	return "https://" + f.Name + ".example.com/oauth?state=" + state
}

func (f *FakeAuthProvider) ExchangeCode(_ context.Context, code string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	return "provider-token-" + code, nil
}

func (f *FakeAuthProvider) GetUserProfile(_ context.Context, _ string) (*domain.SocialProfile, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Profile, nil
}
