package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type orderTestEnv struct {
	*fixture
	svc      OrderService
	observer *recordingObserver
	customer *model.User
	admin    *model.User
	product  *model.Product
	orderID  uint
}

// setupOrderServiceTest places one PENDING order of 3 units, leaving 7 in stock.
func setupOrderServiceTest(t *testing.T) *orderTestEnv {
	f := newFixture(t)
	observer := &recordingObserver{}
	env := &orderTestEnv{
		fixture:  f,
		svc:      NewOrderService(f.db, f.orderRepo, f.productRepo, f.notificationRepo, observer),
		observer: observer,
		customer: f.createUser(t, "customer@example.com", model.RoleUser),
		admin:    f.createUser(t, "admin@example.com", model.RoleAdmin),
	}
	category := f.createCategory(t, "figures")
	env.product = f.createProduct(t, category.ID, "figure", "40", 10)
	f.addToCart(t, env.customer.ID, env.product.ID, 3)

	result, err := newCheckoutService(f, nil).Checkout(context.Background(), env.customer.ID, checkoutInput())
	require.NoError(t, err)
	env.orderID = result.OrderID
	return env
}

func (e *orderTestEnv) customerActor() Actor { return Actor{UserID: e.customer.ID} }
func (e *orderTestEnv) adminActor() Actor    { return Actor{UserID: e.admin.ID, IsAdmin: true} }

func (e *orderTestEnv) setStatus(t *testing.T, status model.OrderStatus) {
	_, err := e.svc.UpdateStatus(context.Background(), e.adminActor(), e.orderID, StatusUpdate{Status: string(status)})
	require.NoError(t, err)
}

func TestOrderService_CustomerCancelsPendingOrder(t *testing.T) {
	env := setupOrderServiceTest(t)

	order, err := env.svc.UpdateStatus(context.Background(), env.customerActor(), env.orderID, StatusUpdate{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, order.Status)
	assert.Equal(t, 10, env.reloadProduct(t, env.product.ID).Stock)

	notifications, _, err := env.notificationRepo.FindAll(false, repositoryPage(1, 20))
	require.NoError(t, err)
	var cancelled int
	for _, n := range notifications {
		if n.Type == model.NotificationTypeOrderCancelled {
			cancelled++
			require.NotNil(t, n.OrderID)
			assert.Equal(t, env.orderID, *n.OrderID)
		}
	}
	assert.Equal(t, 1, cancelled)
	assert.Equal(t, []model.OrderStatus{model.OrderStatusCancelled}, env.observer.changed)
}

func TestOrderService_CustomerCannotCancelShippedOrder(t *testing.T) {
	env := setupOrderServiceTest(t)
	env.setStatus(t, model.OrderStatusShipped)

	_, err := env.svc.UpdateStatus(context.Background(), env.customerActor(), env.orderID, StatusUpdate{Status: "CANCELLED"})
	assert.ErrorIs(t, err, ErrCancelNotAllowed)

	order, err := env.orderRepo.FindByID(env.orderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, order.Status)
	assert.Equal(t, 7, env.reloadProduct(t, env.product.ID).Stock)
}

func TestOrderService_AdminCancelsShippedOrder(t *testing.T) {
	env := setupOrderServiceTest(t)
	env.setStatus(t, model.OrderStatusShipped)

	order, err := env.svc.UpdateStatus(context.Background(), env.adminActor(), env.orderID, StatusUpdate{Status: "CANCELLED"})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, order.Status)
	assert.Equal(t, 10, env.reloadProduct(t, env.product.ID).Stock)

	// Admin cancellations do not notify the admin feed.
	var count int64
	require.NoError(t, env.db.Model(&model.Notification{}).
		Where("type = ?", model.NotificationTypeOrderCancelled).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOrderService_CustomerMayOnlyCancel(t *testing.T) {
	env := setupOrderServiceTest(t)

	_, err := env.svc.UpdateStatus(context.Background(), env.customerActor(), env.orderID, StatusUpdate{Status: "SHIPPED"})
	assert.ErrorIs(t, err, ErrCancelForbidden)
}

func TestOrderService_OtherCustomersOrderIsNotFound(t *testing.T) {
	env := setupOrderServiceTest(t)
	stranger := env.createUser(t, "stranger@example.com", model.RoleUser)

	_, err := env.svc.UpdateStatus(context.Background(), Actor{UserID: stranger.ID}, env.orderID, StatusUpdate{Status: "CANCELLED"})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = env.svc.GetOrder(Actor{UserID: stranger.ID}, env.orderID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	order, err := env.svc.GetOrder(env.customerActor(), env.orderID)
	require.NoError(t, err)
	assert.Equal(t, env.customer.ID, order.UserID)
}

func TestOrderService_InvalidAndDuplicateStatus(t *testing.T) {
	env := setupOrderServiceTest(t)

	_, err := env.svc.UpdateStatus(context.Background(), env.adminActor(), env.orderID, StatusUpdate{Status: "LOST"})
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)

	_, err = env.svc.UpdateStatus(context.Background(), env.adminActor(), env.orderID, StatusUpdate{Status: "PENDING"})
	assert.ErrorIs(t, err, ErrDuplicateStatus)

	_, err = env.svc.UpdateStatus(context.Background(), env.adminActor(), 404, StatusUpdate{Status: "SHIPPED"})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_ReopenCancelledOrderReservesStock(t *testing.T) {
	env := setupOrderServiceTest(t)
	env.setStatus(t, model.OrderStatusCancelled)
	assert.Equal(t, 10, env.reloadProduct(t, env.product.ID).Stock)

	env.setStatus(t, model.OrderStatusProcessing)
	assert.Equal(t, 7, env.reloadProduct(t, env.product.ID).Stock)
}

func TestOrderService_ReopenFailsWithoutStock(t *testing.T) {
	env := setupOrderServiceTest(t)
	env.setStatus(t, model.OrderStatusCancelled)

	require.NoError(t, env.db.Model(&model.Product{}).Where("id = ?", env.product.ID).Update("stock", 1).Error)

	_, err := env.svc.UpdateStatus(context.Background(), env.adminActor(), env.orderID, StatusUpdate{Status: "PROCESSING"})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	order, err := env.orderRepo.FindByID(env.orderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, order.Status)
	assert.Equal(t, 1, env.reloadProduct(t, env.product.ID).Stock)
}

func TestOrderService_AdminSetsTrackingNumber(t *testing.T) {
	env := setupOrderServiceTest(t)
	tracking := "SMSA-123456"

	order, err := env.svc.UpdateStatus(context.Background(), env.adminActor(), env.orderID, StatusUpdate{
		Status:         "SHIPPED",
		TrackingNumber: &tracking,
	})
	require.NoError(t, err)
	assert.Equal(t, tracking, order.TrackingNumber)
}

func TestOrderService_ListOrders(t *testing.T) {
	env := setupOrderServiceTest(t)

	orders, total, err := env.svc.ListUserOrders(env.customer.ID, repository.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, orders, 1)

	orders, total, err = env.svc.ListUserOrders(env.admin.ID, repository.Pagination{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)

	_, total, err = env.svc.ListOrders(repository.OrderFilter{Status: model.OrderStatusShipped})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, _, err = env.svc.ListOrders(repository.OrderFilter{Status: "BOGUS"})
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)
}

func TestOrderExporter_WritesWorkbook(t *testing.T) {
	env := setupOrderServiceTest(t)
	exporter := NewOrderExporter(env.orderRepo)

	var buf bytes.Buffer
	n, err := exporter.Export(context.Background(), repository.OrderFilter{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(ordersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "رقم الطلب", rows[0][0])
	assert.Regexp(t, `^ORD-`, rows[1][0])
	assert.Equal(t, "PENDING", rows[1][8])

	items, err := book.GetRows(itemsSheet)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "figure", items[1][1])
	assert.Equal(t, "3", items[1][4])

	raw := excelize.Options{RawCellValue: true}
	money := map[string]string{
		ordersSheet + "!J2": "120.00",
		ordersSheet + "!M2": "120.00",
		itemsSheet + "!D2":  "40.00",
		itemsSheet + "!F2":  "120.00",
	}
	for ref, want := range money {
		parts := strings.SplitN(ref, "!", 2)
		got, err := book.GetCellValue(parts[0], parts[1], raw)
		require.NoError(t, err)
		assert.Equal(t, want, got, ref)

		cellType, err := book.GetCellType(parts[0], parts[1])
		require.NoError(t, err)
		assert.NotEqual(t, excelize.CellTypeSharedString, cellType, ref)
	}
}
