package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/animestore-backend/config"
	"github.com/ikkim/animestore-backend/internal/app/controller"
	"github.com/ikkim/animestore-backend/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	authRatePerMinute = 10
	authRateBurst     = 5
)

// Controllers bundles every HTTP handler set the router mounts.
type Controllers struct {
	Auth         *controller.AuthController
	Product      *controller.ProductController
	Category     *controller.CategoryController
	Review       *controller.ReviewController
	Cart         *controller.CartController
	Order        *controller.OrderController
	Wishlist     *controller.WishlistController
	Chat         *controller.ChatController
	Notification *controller.NotificationController
	Settings     *controller.SettingsController
	Dashboard    *controller.DashboardController
	Upload       *controller.UploadController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	healthCheck    func() error
	config         *config.Config
}

// NewRouter wires the route table. healthCheck reports whether the database
// answers and may be nil.
func NewRouter(
	controllers Controllers,
	authMiddleware *middleware.AuthMiddleware,
	healthCheck func() error,
	cfg *config.Config,
) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		healthCheck:    healthCheck,
		config:         cfg,
	}
}

func (r *Router) Setup() (*gin.Engine, error) {
	gin.SetMode(r.config.Server.GinMode)
	if err := controller.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", r.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ctl := r.controllers
	authRequired := r.authMiddleware.Authenticate()
	authLimiter := middleware.NewRateLimiter(authRatePerMinute, authRateBurst)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authLimiter.Middleware(), ctl.Auth.Register)
			auth.POST("/login", authLimiter.Middleware(), ctl.Auth.Login)
			auth.POST("/logout", authRequired, ctl.Auth.Logout)
			auth.GET("/me", authRequired, ctl.Auth.Me)
		}

		products := api.Group("/products")
		{
			products.GET("", ctl.Product.ListProducts)
			products.GET("/:id", ctl.Product.GetProduct)
			products.GET("/:id/reviews", ctl.Review.ListReviews)
			products.POST("/:id/reviews", authRequired, ctl.Review.CreateReview)
		}

		api.GET("/categories", ctl.Category.ListCategories)
		api.GET("/categories/:slug", ctl.Category.GetCategory)
		api.GET("/settings", ctl.Settings.GetSettings)

		cart := api.Group("/cart", authRequired)
		{
			cart.GET("", ctl.Cart.GetCart)
			cart.POST("", ctl.Cart.AddToCart)
			cart.DELETE("", ctl.Cart.ClearCart)
			cart.PUT("/:id", ctl.Cart.UpdateCartItem)
			cart.DELETE("/:id", ctl.Cart.RemoveFromCart)
		}

		api.POST("/checkout", authRequired, ctl.Order.Checkout)

		orders := api.Group("/orders", authRequired)
		{
			orders.GET("", ctl.Order.ListMyOrders)
			orders.GET("/:id", ctl.Order.GetOrder)
			orders.PUT("/:id/status", ctl.Order.UpdateStatus)
		}

		wishlist := api.Group("/wishlist", authRequired)
		{
			wishlist.GET("", ctl.Wishlist.GetWishlist)
			wishlist.POST("", ctl.Wishlist.AddToWishlist)
			wishlist.DELETE("/:productId", ctl.Wishlist.RemoveFromWishlist)
		}

		chat := api.Group("/chat", authRequired)
		{
			chat.GET("", ctl.Chat.GetMyConversation)
			chat.POST("/messages", ctl.Chat.SendMessage)
			chat.PUT("/read", ctl.Chat.MarkRead)
		}
		api.GET("/chat/ws", r.authMiddleware.AuthenticateWebSocket(), ctl.Chat.WebSocket)

		admin := api.Group("/admin", authRequired, r.authMiddleware.RequireAdmin())
		{
			admin.GET("/dashboard", ctl.Dashboard.GetStats)
			admin.PUT("/settings", ctl.Settings.UpdateSettings)
			admin.POST("/uploads/presign", ctl.Upload.Presign)

			admin.POST("/products", ctl.Product.CreateProduct)
			admin.PUT("/products/:id", ctl.Product.UpdateProduct)
			admin.DELETE("/products/:id", ctl.Product.DeleteProduct)

			admin.POST("/categories", ctl.Category.CreateCategory)
			admin.PUT("/categories/:id", ctl.Category.UpdateCategory)
			admin.DELETE("/categories/:id", ctl.Category.DeleteCategory)

			admin.GET("/orders", ctl.Order.ListOrders)
			admin.GET("/orders/export", ctl.Order.ExportOrders)
			admin.GET("/orders/:id", ctl.Order.GetOrder)
			admin.PUT("/orders/:id/status", ctl.Order.UpdateStatus)

			admin.GET("/notifications", ctl.Notification.ListNotifications)
			admin.GET("/notifications/unread-count", ctl.Notification.UnreadCount)
			admin.PUT("/notifications/read-all", ctl.Notification.MarkAllRead)
			admin.PUT("/notifications/:id/read", ctl.Notification.MarkRead)

			admin.GET("/conversations", ctl.Chat.ListConversations)
			admin.GET("/conversations/:id", ctl.Chat.GetConversation)
			admin.POST("/conversations/:id/messages", ctl.Chat.Reply)
			admin.PUT("/conversations/:id/read", ctl.Chat.MarkConversationRead)
		}
	}

	return router, nil
}

func (r *Router) health(c *gin.Context) {
	if r.healthCheck != nil {
		if err := r.healthCheck(); err != nil {
			middleware.GetLoggerFromContext(c).Error("Health check failed", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
