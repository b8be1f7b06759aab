package repository

import (
	"testing"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestOrder(t *testing.T, repo OrderRepository, userID uint, number string, total string, status model.OrderStatus) *model.Order {
	amount := decimal.RequireFromString(total)
	order := &model.Order{
		OrderNumber:   number,
		UserID:        userID,
		Subtotal:      amount,
		ShippingCost:  decimal.Zero,
		TaxAmount:     decimal.Zero,
		TotalAmount:   amount,
		Status:        status,
		PaymentMethod: model.PaymentMethodCOD,
		ShippingAddress: model.ShippingAddress{
			FullName: "سارة أحمد",
			Phone:    "0500000000",
			City:     "الرياض",
			Address:  "شارع الملك فهد",
		},
		OrderItems: []model.OrderItem{{
			ProductID:     1,
			ProductName:   "Naruto Figure",
			ProductNameAr: "مجسم ناروتو",
			UnitPrice:     amount,
			Quantity:      1,
			LineTotal:     amount,
		}},
	}
	require.NoError(t, repo.Create(order))
	return order
}

func TestOrderRepository_CreateAndFind(t *testing.T) {
	testDB, _, _ := setupProductTest(t)
	repo := NewOrderRepository(testDB)

	user := &model.User{Email: "order@example.com", PasswordHash: "hash", Name: "Buyer"}
	require.NoError(t, testDB.Create(user).Error)

	order := createTestOrder(t, repo, user.ID, "ORD-1", "100", model.OrderStatusPending)
	assert.NotZero(t, order.ID)
	assert.NotZero(t, order.OrderItems[0].OrderID)

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", found.OrderNumber)
	assert.Equal(t, "الرياض", found.ShippingAddress.City)
	require.Len(t, found.OrderItems, 1)
	assert.Equal(t, "مجسم ناروتو", found.OrderItems[0].ProductNameAr)
	require.NotNil(t, found.User)
	assert.Equal(t, "Buyer", found.User.Name)
}

func TestOrderRepository_FindAllFilters(t *testing.T) {
	testDB, _, _ := setupProductTest(t)
	repo := NewOrderRepository(testDB)

	createTestOrder(t, repo, 1, "ORD-1", "100", model.OrderStatusPending)
	createTestOrder(t, repo, 1, "ORD-2", "50", model.OrderStatusCancelled)
	createTestOrder(t, repo, 2, "ORD-3", "25.50", model.OrderStatusDelivered)

	userID := uint(1)
	orders, total, err := repo.FindAll(OrderFilter{UserID: &userID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, orders, 2)

	orders, total, err = repo.FindAll(OrderFilter{Status: model.OrderStatusDelivered})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "ORD-3", orders[0].OrderNumber)

	revenue, err := repo.SumRevenue()
	require.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.RequireFromString("125.50")), revenue.String())

	pending, err := repo.CountByStatus(model.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	testDB, _, _ := setupProductTest(t)
	repo := NewOrderRepository(testDB)

	order := createTestOrder(t, repo, 1, "ORD-1", "100", model.OrderStatusPending)

	tracking := "TRK-123"
	require.NoError(t, repo.UpdateStatus(order.ID, model.OrderStatusShipped, &tracking))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, found.Status)
	assert.Equal(t, "TRK-123", found.TrackingNumber)

	assert.ErrorIs(t, repo.UpdateStatus(9999, model.OrderStatusShipped, nil), gorm.ErrRecordNotFound)
}

func TestOrderRepository_SumRevenueEmpty(t *testing.T) {
	testDB, _, _ := setupProductTest(t)
	repo := NewOrderRepository(testDB)

	revenue, err := repo.SumRevenue()
	require.NoError(t, err)
	assert.True(t, revenue.IsZero())
}

func TestOrderRepository_FindReferencedImages(t *testing.T) {
	testDB, _, _ := setupProductTest(t)
	repo := NewOrderRepository(testDB)

	first := createTestOrder(t, repo, 1, "ORD-1", "100", model.OrderStatusPending)
	second := createTestOrder(t, repo, 1, "ORD-2", "100", model.OrderStatusDelivered)
	for _, order := range []*model.Order{first, second} {
		require.NoError(t, testDB.Model(&model.OrderItem{}).
			Where("order_id = ?", order.ID).
			Update("image_url", "https://cdn.example.com/a.jpg").Error)
	}

	referenced, err := repo.FindReferencedImages([]string{
		"https://cdn.example.com/a.jpg",
		"https://cdn.example.com/b.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg"}, referenced)

	referenced, err = repo.FindReferencedImages(nil)
	require.NoError(t, err)
	assert.Empty(t, referenced)
}
