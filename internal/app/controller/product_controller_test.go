package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ikkim/animestore-backend/internal/app/model"
	apperrors "github.com/ikkim/animestore-backend/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductController_ListAndGet(t *testing.T) {
	api := setupTestAPI(t)
	naruto := api.createProduct(t, "naruto-figure", "120.00", 4)
	api.createProduct(t, "one-piece-poster", "35.50", 10)

	w := api.do(t, http.MethodGet, "/api/products?search=naruto", "", nil)
	requireStatus(t, w, http.StatusOK)

	var page struct {
		Items []model.Product `json:"items"`
		Total int64           `json:"total"`
		Page  int             `json:"page"`
	}
	decode(t, w, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, naruto.ID, page.Items[0].ID)
	assert.True(t, decimal.RequireFromString("120").Equal(page.Items[0].Price))

	w = api.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d", naruto.ID), "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), "naruto-figure")
}

func TestProductController_GetErrors(t *testing.T) {
	api := setupTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/products/9999", "", nil)
	requireStatus(t, w, http.StatusNotFound)
	assert.Equal(t, apperrors.ProductNotFound, errorCodeOf(t, w))

	w = api.do(t, http.MethodGet, "/api/products/abc", "", nil)
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, apperrors.ValidationInvalidID, errorCodeOf(t, w))
}

func TestProductController_AdminCreate(t *testing.T) {
	api := setupTestAPI(t)
	_, adminToken := api.createUser(t, "admin@example.com", model.RoleAdmin)
	_, userToken := api.createUser(t, "user@example.com", model.RoleUser)
	seed := api.createProduct(t, "seed", "10.00", 1)

	body := map[string]interface{}{
		"category_id": seed.CategoryID,
		"name":        "Luffy Hat",
		"name_ar":     "قبعة لوفي",
		"price":       "89.99",
		"sale_price":  "79.99",
		"stock":       12,
		"images":      []string{"https://cdn.example.com/hat.jpg"},
	}

	w := api.do(t, http.MethodPost, "/api/admin/products", userToken, body)
	requireStatus(t, w, http.StatusForbidden)
	assert.Equal(t, apperrors.AuthzAdminOnly, errorCodeOf(t, w))

	w = api.do(t, http.MethodPost, "/api/admin/products", adminToken, body)
	requireStatus(t, w, http.StatusCreated)

	var created struct {
		Product model.Product `json:"product"`
	}
	decode(t, w, &created)
	assert.Equal(t, "قبعة لوفي", created.Product.NameAr)
	assert.True(t, decimal.RequireFromString("89.99").Equal(created.Product.Price))
	require.True(t, created.Product.SalePrice.Valid)
	assert.True(t, decimal.RequireFromString("79.99").Equal(created.Product.SalePrice.Decimal))
}

func TestProductController_CreateValidation(t *testing.T) {
	api := setupTestAPI(t)
	_, adminToken := api.createUser(t, "admin@example.com", model.RoleAdmin)
	seed := api.createProduct(t, "seed", "10.00", 1)

	tests := []struct {
		name  string
		price string
		image string
	}{
		{name: "negative price", price: "-1", image: "https://cdn.example.com/a.jpg"},
		{name: "three decimals", price: "10.999", image: "https://cdn.example.com/a.jpg"},
		{name: "not a number", price: "cheap", image: "https://cdn.example.com/a.jpg"},
		{name: "image not a url", price: "10", image: "hat.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodPost, "/api/admin/products", adminToken, map[string]interface{}{
				"category_id": seed.CategoryID,
				"name":        "x",
				"name_ar":     "x",
				"price":       tt.price,
				"images":      []string{tt.image},
			})
			requireStatus(t, w, http.StatusBadRequest)
			assert.Equal(t, apperrors.ValidationInvalidInput, errorCodeOf(t, w))
		})
	}
}

func TestProductController_AdminDelete(t *testing.T) {
	api := setupTestAPI(t)
	_, adminToken := api.createUser(t, "admin@example.com", model.RoleAdmin)
	product := api.createProduct(t, "deleted", "10.00", 1)

	w := api.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/products/%d", product.ID), adminToken, nil)
	requireStatus(t, w, http.StatusOK)

	w = api.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d", product.ID), "", nil)
	requireStatus(t, w, http.StatusNotFound)
}
