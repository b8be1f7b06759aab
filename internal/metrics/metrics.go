package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checkout results used as the label of CheckoutsTotal.
const (
	CheckoutSuccess           = "success"
	CheckoutEmptyCart         = "empty_cart"
	CheckoutInsufficientStock = "insufficient_stock"
	CheckoutProductNotFound   = "product_not_found"
	CheckoutError             = "error"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	CheckoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_checkouts_total",
		Help: "Checkout attempts by result",
	}, []string{"result"})

	// OrderRevenueTotal is incremented by the total amount of every placed order.
	OrderRevenueTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_order_revenue_total",
		Help: "Sum of placed order totals",
	})

	OrderStatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_order_status_changes_total",
		Help: "Order status transitions by target status",
	}, []string{"status"})

	WebsocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shop_websocket_connections",
		Help: "Open live chat connections",
	})
)
