package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuanTND2497/expense-tracker/internal/domain"
	"github.com/QuanTND2497/expense-tracker/internal/service"
)

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func jsonRequest(method, target, payload string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func newCategoryTestApp(t *testing.T) (*fiber.App, *service.FakeCategoryStore) {
	t.Helper()

	store := service.NewFakeCategoryStore()
	app := fiber.New()
	NewCategoryHandler(store).Register(app.Group("/api"))
	return app, store
}

func TestCategoryCreateAndGet(t *testing.T) {
	app, _ := newCategoryTestApp(t)

	resp, err := app.Test(jsonRequest("POST", "/api/categories/", `{"name":"Hobbies","description":"Climbing gear"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	created := body["category"].(map[string]interface{})
	assert.Equal(t, "Hobbies", created["name"])
	assert.Equal(t, false, created["is_default"])

	resp, err = app.Test(httptest.NewRequest("GET", "/api/categories/"+created["id"].(string), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCategoryCreateValidation(t *testing.T) {
	app, _ := newCategoryTestApp(t)

	resp, err := app.Test(jsonRequest("POST", "/api/categories/", `{"name":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	errs := body["errors"].([]interface{})
	require.Len(t, errs, 1)
	assert.Equal(t, "Name", errs[0].(map[string]interface{})["field"])
}

func TestCategoryGetNotFound(t *testing.T) {
	app, _ := newCategoryTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/categories/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Category not found", decodeBody(t, resp)["message"])
}

func TestCategoryUpdateDefaultForbidden(t *testing.T) {
	app, store := newCategoryTestApp(t)

	def, err := store.CreateCategory(context.Background(), &domain.Category{Name: "Food", IsDefault: true})
	require.NoError(t, err)

	resp, err := app.Test(jsonRequest("PUT", "/api/categories/"+def.ID, `{"name":"Renamed"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Default categories cannot be modified", decodeBody(t, resp)["message"])
}

func TestCategoryDeleteDefaultForbidden(t *testing.T) {
	app, store := newCategoryTestApp(t)

	def, err := store.CreateCategory(context.Background(), &domain.Category{Name: "Bills", IsDefault: true})
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/categories/"+def.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Default categories cannot be deleted", decodeBody(t, resp)["message"])
}

func TestCategoryDeleteWithTransactions(t *testing.T) {
	app, store := newCategoryTestApp(t)

	cat, err := store.CreateCategory(context.Background(), &domain.Category{Name: "Hobbies"})
	require.NoError(t, err)
	store.TransactionCounts[cat.ID] = 3

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/categories/"+cat.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Cannot delete category with associated transactions", body["message"])
	assert.Equal(t, float64(3), body["transactionCount"])
}

func TestCategoryDelete(t *testing.T) {
	app, store := newCategoryTestApp(t)

	cat, err := store.CreateCategory(context.Background(), &domain.Category{Name: "Hobbies"})
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/categories/"+cat.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, store.Categories)
}
