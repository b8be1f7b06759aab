package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	apperrors "github.com/ikkim/animestore-backend/internal/errors"
	"github.com/ikkim/animestore-backend/internal/metrics"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"gorm.io/gorm"
)

// Actor is the authenticated caller of an order operation.
type Actor struct {
	UserID  uint
	IsAdmin bool
}

type StatusUpdate struct {
	Status         string
	TrackingNumber *string
}

type OrderService interface {
	ListUserOrders(userID uint, page repository.Pagination) ([]model.Order, int64, error)
	ListOrders(filter repository.OrderFilter) ([]model.Order, int64, error)
	GetOrder(actor Actor, orderID uint) (*model.Order, error)
	UpdateStatus(ctx context.Context, actor Actor, orderID uint, update StatusUpdate) (*model.Order, error)
}

type orderService struct {
	db               *gorm.DB
	orderRepo        repository.OrderRepository
	productRepo      repository.ProductRepository
	notificationRepo repository.NotificationRepository
	observer         OrderObserver
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	notificationRepo repository.NotificationRepository,
	observer OrderObserver,
) OrderService {
	return &orderService{
		db:               db,
		orderRepo:        orderRepo,
		productRepo:      productRepo,
		notificationRepo: notificationRepo,
		observer:         observer,
	}
}

func (s *orderService) ListUserOrders(userID uint, page repository.Pagination) ([]model.Order, int64, error) {
	orders, total, err := s.orderRepo.FindAll(repository.OrderFilter{UserID: &userID, Pagination: page})
	if err != nil {
		return nil, 0, apperrors.Upstream(err, "order")
	}
	return orders, total, nil
}

func (s *orderService) ListOrders(filter repository.OrderFilter) ([]model.Order, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidOrderStatus
	}
	orders, total, err := s.orderRepo.FindAll(filter)
	if err != nil {
		return nil, 0, apperrors.Upstream(err, "order")
	}
	return orders, total, nil
}

// GetOrder returns the order when the actor owns it or is an admin. Someone
// else's order is reported as not found.
func (s *orderService) GetOrder(actor Actor, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, apperrors.Upstream(err, "order")
	}
	if !actor.IsAdmin && order.UserID != actor.UserID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ParseOrderStatus accepts a status name in any letter case.
func ParseOrderStatus(raw string) (model.OrderStatus, error) {
	status := model.OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", ErrInvalidOrderStatus
	}
	return status, nil
}

// UpdateStatus moves an order to a new status.
//
// Customers may only cancel their own order while it is PENDING or
// PROCESSING. Admins may set any status. Entering CANCELLED returns the items
// to stock and leaving it reserves them again, both inside the same
// transaction as the status write.
func (s *orderService) UpdateStatus(ctx context.Context, actor Actor, orderID uint, update StatusUpdate) (*model.Order, error) {
	if actor.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	status, err := ParseOrderStatus(update.Status)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		update.TrackingNumber = nil
	}

	var from model.OrderStatus
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.FindByIDForUpdate(orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		from = order.Status

		if !actor.IsAdmin {
			if order.UserID != actor.UserID {
				return ErrOrderNotFound
			}
			if status != model.OrderStatusCancelled {
				return ErrCancelForbidden
			}
		}
		if order.Status == status {
			return ErrDuplicateStatus
		}
		if !actor.IsAdmin && !order.Status.CustomerCancellable() {
			return ErrCancelNotAllowed
		}

		productRepo := s.productRepo.WithTx(tx)
		switch {
		case status == model.OrderStatusCancelled:
			for _, item := range order.OrderItems {
				if err := productRepo.IncrementStock(item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		case order.Status == model.OrderStatusCancelled:
			for _, item := range order.OrderItems {
				ok, err := productRepo.DecrementStock(item.ProductID, item.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					return insufficientStockFor(item.ProductNameAr)
				}
			}
		}

		if err := orderRepo.UpdateStatus(order.ID, status, update.TrackingNumber); err != nil {
			return err
		}

		if !actor.IsAdmin && status == model.OrderStatusCancelled {
			notification := &model.Notification{
				Type:    model.NotificationTypeOrderCancelled,
				Message: fmt.Sprintf("قام العميل بإلغاء الطلب رقم %s", order.OrderNumber),
				Link:    fmt.Sprintf("/admin/orders/%d", order.ID),
				OrderID: &order.ID,
			}
			if err := s.notificationRepo.WithTx(tx).Create(notification); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		logger.Error("Failed to update order status", err, map[string]interface{}{
			"order_id": orderID,
			"status":   status,
		})
		return nil, apperrors.Upstream(err, "order")
	}

	metrics.OrderStatusChangesTotal.WithLabelValues(string(status)).Inc()
	logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"from":     from,
		"to":       status,
		"by_admin": actor.IsAdmin,
		"actor_id": actor.UserID,
	})

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, apperrors.Upstream(err, "order")
	}
	if s.observer != nil {
		s.observer.OrderStatusChanged(ctx, order, from)
	}
	return order, nil
}
