package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ikkim/animestore-backend/config"
	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	"github.com/ikkim/animestore-backend/internal/mailer"
	"github.com/ikkim/animestore-backend/pkg/logger"
)

// Live event names sent over the websocket.
const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
	EventChatMessage        = "chat_message"
	EventNotification       = "notification"
)

// Publisher pushes live events to connected websocket clients. Implementations
// must not block the caller.
type Publisher interface {
	PublishToAdmins(event string, payload interface{})
	PublishToUser(userID uint, event string, payload interface{})
}

type noopPublisher struct{}

func (noopPublisher) PublishToAdmins(string, interface{})     {}
func (noopPublisher) PublishToUser(uint, string, interface{}) {}

func publisherOrNoop(p Publisher) Publisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

// OrderObserver is told about order changes after their transaction commits.
type OrderObserver interface {
	OrderPlaced(ctx context.Context, order *model.Order)
	OrderStatusChanged(ctx context.Context, order *model.Order, from model.OrderStatus)
}

// OrderNotifier fans committed order events out to the websocket hub and to
// email. Emails are sent in the background; Wait blocks until they finish.
type OrderNotifier struct {
	publisher Publisher
	mailer    mailer.Mailer
	users     repository.UserRepository
	settings  repository.SettingsRepository
	store     config.StoreConfig
	wg        sync.WaitGroup
}

func NewOrderNotifier(
	publisher Publisher,
	m mailer.Mailer,
	users repository.UserRepository,
	settings repository.SettingsRepository,
	store config.StoreConfig,
) *OrderNotifier {
	return &OrderNotifier{
		publisher: publisherOrNoop(publisher),
		mailer:    m,
		users:     users,
		settings:  settings,
		store:     store,
	}
}

type orderEvent struct {
	OrderID     uint              `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	UserID      uint              `json:"user_id"`
	Status      model.OrderStatus `json:"status"`
	PrevStatus  model.OrderStatus `json:"prev_status,omitempty"`
	TotalAmount string            `json:"total_amount"`
}

func newOrderEvent(order *model.Order) orderEvent {
	return orderEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount.StringFixed(2),
	}
}

func (n *OrderNotifier) OrderPlaced(ctx context.Context, order *model.Order) {
	n.publisher.PublishToAdmins(EventOrderCreated, newOrderEvent(order))

	if n.mailer == nil {
		return
	}
	data := n.emailData(order)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		bg := context.WithoutCancel(ctx)
		if err := n.mailer.SendOrderConfirmation(bg, data); err != nil {
			logger.Error("Failed to send order confirmation email", err, logger.Fields{
				"order_number": order.OrderNumber,
			})
		}
		if err := n.mailer.SendAdminNewOrder(bg, data); err != nil {
			logger.Error("Failed to send admin new order email", err, logger.Fields{
				"order_number": order.OrderNumber,
			})
		}
	}()
}

func (n *OrderNotifier) OrderStatusChanged(_ context.Context, order *model.Order, from model.OrderStatus) {
	event := newOrderEvent(order)
	event.PrevStatus = from
	n.publisher.PublishToUser(order.UserID, EventOrderStatusChanged, event)
	n.publisher.PublishToAdmins(EventOrderStatusChanged, event)
}

// Wait blocks until every queued email has been attempted.
func (n *OrderNotifier) Wait() {
	n.wg.Wait()
}

func (n *OrderNotifier) emailData(order *model.Order) mailer.OrderEmailData {
	data := mailer.OrderEmailData{
		StoreName:    n.store.Name,
		CustomerName: order.ShippingAddress.FullName,
		OrderNumber:  order.OrderNumber,
		Subtotal:     order.Subtotal.StringFixed(2),
		ShippingCost: order.ShippingCost.StringFixed(2),
		TaxAmount:    order.TaxAmount.StringFixed(2),
		TotalAmount:  order.TotalAmount.StringFixed(2),
		Currency:     model.DefaultSettings().Currency,
	}
	if n.store.PublicURL != "" {
		data.OrderURL = fmt.Sprintf("%s/orders/%d", strings.TrimRight(n.store.PublicURL, "/"), order.ID)
	}
	if n.users != nil {
		if user, err := n.users.FindByID(order.UserID); err == nil {
			data.CustomerEmail = user.Email
			if data.CustomerName == "" {
				data.CustomerName = user.Name
			}
		} else {
			logger.Warn("Order owner not found for email", logger.Fields{
				"order_id": order.ID,
				"user_id":  order.UserID,
			})
		}
	}
	if n.settings != nil {
		if s, err := n.settings.Get(); err == nil {
			data.Currency = s.Currency
		}
	}
	for _, item := range order.OrderItems {
		name := item.ProductNameAr
		if name == "" {
			name = item.ProductName
		}
		data.Lines = append(data.Lines, mailer.OrderEmailLine{
			Name:      name,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal.StringFixed(2),
		})
	}
	return data
}
