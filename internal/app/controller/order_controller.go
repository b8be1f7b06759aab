package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	"github.com/ikkim/animestore-backend/internal/app/service"
	apperrors "github.com/ikkim/animestore-backend/internal/errors"
	"github.com/ikkim/animestore-backend/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type OrderController struct {
	checkoutService service.CheckoutService
	orderService    service.OrderService
	exporter        *service.OrderExporter
}

func NewOrderController(
	checkoutService service.CheckoutService,
	orderService service.OrderService,
	exporter *service.OrderExporter,
) *OrderController {
	return &OrderController{
		checkoutService: checkoutService,
		orderService:    orderService,
		exporter:        exporter,
	}
}

// Missing address fields and unknown payment methods are reported by the
// checkout service with their own codes.
type ShippingAddressRequest struct {
	FullName   string `json:"full_name" binding:"max=100"`
	Phone      string `json:"phone" binding:"max=30"`
	City       string `json:"city" binding:"max=100"`
	Address    string `json:"address" binding:"max=500"`
	PostalCode string `json:"postal_code" binding:"max=20"`
}

type CheckoutRequest struct {
	ShippingAddress ShippingAddressRequest `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method" binding:"max=20"`
	Notes           string                 `json:"notes" binding:"max=1000"`
}

type UpdateOrderStatusRequest struct {
	Status         string  `json:"status" binding:"required"`
	TrackingNumber *string `json:"tracking_number" binding:"omitempty,max=100"`
}

func actorFrom(c *gin.Context, userID uint) service.Actor {
	return service.Actor{UserID: userID, IsAdmin: middleware.IsAdmin(c)}
}

// Checkout turns the caller's cart into an order.
// POST /api/checkout
func (ctrl *OrderController) Checkout(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := ctrl.checkoutService.Checkout(c.Request.Context(), userID, service.CheckoutInput{
		ShippingAddress: model.ShippingAddress{
			FullName:   req.ShippingAddress.FullName,
			Phone:      req.ShippingAddress.Phone,
			City:       req.ShippingAddress.City,
			Address:    req.ShippingAddress.Address,
			PostalCode: req.ShippingAddress.PostalCode,
		},
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
		Notes:         req.Notes,
	})
	if err != nil {
		respondError(c, err, "checkout")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListMyOrders GET /api/orders
func (ctrl *OrderController) ListMyOrders(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	page := paginationFromQuery(c)

	orders, total, err := ctrl.orderService.ListUserOrders(userID, page)
	if err != nil {
		respondError(c, err, "list orders")
		return
	}
	c.JSON(http.StatusOK, newPage(orders, total, page))
}

// GetOrder GET /api/orders/:id and /api/admin/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrder(actorFrom(c, userID), orderID)
	if err != nil {
		respondError(c, err, "get order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdateStatus PUT /api/orders/:id/status and /api/admin/orders/:id/status.
// Customers may only cancel their own order.
func (ctrl *OrderController) UpdateStatus(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctrl.orderService.UpdateStatus(c.Request.Context(), actorFrom(c, userID), orderID, service.StatusUpdate{
		Status:         req.Status,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		respondError(c, err, "update order status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func orderFilterFromQuery(c *gin.Context) (repository.OrderFilter, error) {
	filter := repository.OrderFilter{Pagination: paginationFromQuery(c)}
	if raw := c.Query("status"); raw != "" {
		status, err := service.ParseOrderStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	for key, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidInput, "صيغة التاريخ يجب أن تكون YYYY-MM-DD")
		}
		if key == "to" {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		*dst = &t
	}
	return filter, nil
}

// ListOrders GET /api/admin/orders?status=&from=&to=&page=&page_size=
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	filter, err := orderFilterFromQuery(c)
	if err != nil {
		respondError(c, err, "list orders")
		return
	}

	orders, total, err := ctrl.orderService.ListOrders(filter)
	if err != nil {
		respondError(c, err, "list orders")
		return
	}
	c.JSON(http.StatusOK, newPage(orders, total, filter.Pagination))
}

// ExportOrders streams an XLSX workbook of the filtered orders.
// GET /api/admin/orders/export
func (ctrl *OrderController) ExportOrders(c *gin.Context) {
	filter, err := orderFilterFromQuery(c)
	if err != nil {
		respondError(c, err, "export orders")
		return
	}

	var buf bytes.Buffer
	count, err := ctrl.exporter.Export(c.Request.Context(), filter, &buf)
	if err != nil {
		respondError(c, err, "export orders")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Orders exported", map[string]interface{}{
		"count": count,
	})
	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
