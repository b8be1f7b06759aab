package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	apperrors "github.com/ikkim/animestore-backend/internal/errors"
	"github.com/ikkim/animestore-backend/internal/metrics"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"github.com/ikkim/animestore-backend/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CheckoutInput struct {
	ShippingAddress model.ShippingAddress
	PaymentMethod   model.PaymentMethod
	Notes           string
}

type CheckoutResult struct {
	OrderID     uint            `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type CheckoutService interface {
	Checkout(ctx context.Context, userID uint, input CheckoutInput) (*CheckoutResult, error)
}

type checkoutService struct {
	db               *gorm.DB
	cartRepo         repository.CartRepository
	productRepo      repository.ProductRepository
	orderRepo        repository.OrderRepository
	notificationRepo repository.NotificationRepository
	settingsRepo     repository.SettingsRepository
	observer         OrderObserver
	now              func() time.Time
}

func NewCheckoutService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	notificationRepo repository.NotificationRepository,
	settingsRepo repository.SettingsRepository,
	observer OrderObserver,
) CheckoutService {
	return &checkoutService{
		db:               db,
		cartRepo:         cartRepo,
		productRepo:      productRepo,
		orderRepo:        orderRepo,
		notificationRepo: notificationRepo,
		settingsRepo:     settingsRepo,
		observer:         observer,
		now:              time.Now,
	}
}

func validateCheckoutInput(input *CheckoutInput) error {
	addr := &input.ShippingAddress
	addr.FullName = strings.TrimSpace(addr.FullName)
	addr.Phone = strings.TrimSpace(addr.Phone)
	addr.City = strings.TrimSpace(addr.City)
	addr.Address = strings.TrimSpace(addr.Address)
	addr.PostalCode = strings.TrimSpace(addr.PostalCode)
	if addr.FullName == "" || addr.Phone == "" || addr.City == "" || addr.Address == "" {
		return ErrMissingAddress
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = model.PaymentMethodCOD
	}
	if !input.PaymentMethod.Valid() {
		return ErrInvalidPayment
	}
	input.Notes = strings.TrimSpace(input.Notes)
	return nil
}

// Checkout converts the user's cart into an order. Everything from reading the
// cart to writing the admin notification happens in one transaction: either
// the order exists with stock decremented and the cart emptied, or nothing
// changed at all.
func (s *checkoutService) Checkout(ctx context.Context, userID uint, input CheckoutInput) (*CheckoutResult, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	if err := validateCheckoutInput(&input); err != nil {
		return nil, err
	}

	logger.Info("Starting checkout", map[string]interface{}{
		"user_id":        userID,
		"payment_method": input.PaymentMethod,
	})

	var order *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.placeOrder(tx, userID, input)
		return err
	})
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues(checkoutResultLabel(err)).Inc()
		if _, ok := apperrors.As(err); ok {
			logger.Warn("Checkout rejected", map[string]interface{}{
				"user_id": userID,
				"reason":  err.Error(),
			})
			return nil, err
		}
		logger.Error("Checkout failed", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, apperrors.Upstream(err, "checkout")
	}

	metrics.CheckoutsTotal.WithLabelValues(metrics.CheckoutSuccess).Inc()
	metrics.OrderRevenueTotal.Add(order.TotalAmount.InexactFloat64())

	logger.Info("Order placed", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      userID,
		"total_amount": order.TotalAmount.StringFixed(2),
		"items":        len(order.OrderItems),
	})

	if s.observer != nil {
		s.observer.OrderPlaced(ctx, order)
	}

	return &CheckoutResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		TotalAmount: order.TotalAmount,
	}, nil
}

func (s *checkoutService) placeOrder(tx *gorm.DB, userID uint, input CheckoutInput) (*model.Order, error) {
	cartRepo := s.cartRepo.WithTx(tx)
	productRepo := s.productRepo.WithTx(tx)

	cartItems, err := cartRepo.FindByUserIDForUpdate(userID)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}

	// Lock products in id order so concurrent checkouts of overlapping carts
	// cannot deadlock each other.
	sort.Slice(cartItems, func(i, j int) bool {
		return cartItems[i].ProductID < cartItems[j].ProductID
	})

	settings, err := s.settingsRepo.WithTx(tx).Get()
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	items := make([]model.OrderItem, 0, len(cartItems))
	cartIDs := make([]uint, 0, len(cartItems))

	for _, line := range cartItems {
		product, err := productRepo.FindByIDForUpdate(line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		if product.Stock < line.Quantity {
			return nil, insufficientStockFor(product.NameAr)
		}

		unitPrice := product.UnitPrice()
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)

		items = append(items, model.OrderItem{
			ProductID:     product.ID,
			ProductName:   product.Name,
			ProductNameAr: product.NameAr,
			ImageURL:      product.PrimaryImage(),
			UnitPrice:     unitPrice,
			Quantity:      line.Quantity,
			LineTotal:     lineTotal,
		})
		cartIDs = append(cartIDs, line.ID)

		ok, err := productRepo.DecrementStock(product.ID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, insufficientStockFor(product.NameAr)
		}
	}

	if err := cartRepo.DeleteByIDs(userID, cartIDs); err != nil {
		return nil, err
	}

	shipping := settings.ShippingCost
	tax := subtotal.Mul(settings.TaxRate).Round(2)

	order := &model.Order{
		OrderNumber:     util.GenerateOrderNumber(s.now()),
		UserID:          userID,
		Subtotal:        subtotal,
		ShippingCost:    shipping,
		TaxAmount:       tax,
		TotalAmount:     subtotal.Add(shipping).Add(tax),
		Status:          model.OrderStatusPending,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		Notes:           input.Notes,
		OrderItems:      items,
	}
	if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
		return nil, err
	}

	notification := &model.Notification{
		Type:    model.NotificationTypeNewOrder,
		Message: fmt.Sprintf("طلب جديد رقم %s بقيمة %s %s", order.OrderNumber, order.TotalAmount.StringFixed(2), settings.Currency),
		Link:    fmt.Sprintf("/admin/orders/%d", order.ID),
		OrderID: &order.ID,
	}
	if err := s.notificationRepo.WithTx(tx).Create(notification); err != nil {
		return nil, err
	}

	return order, nil
}

func checkoutResultLabel(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return metrics.CheckoutEmptyCart
	case errors.Is(err, ErrInsufficientStock):
		return metrics.CheckoutInsufficientStock
	case errors.Is(err, ErrProductNotFound):
		return metrics.CheckoutProductNotFound
	default:
		return metrics.CheckoutError
	}
}
