package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/animestore-backend/config"
	"github.com/ikkim/animestore-backend/internal/app/controller"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	"github.com/ikkim/animestore-backend/internal/app/service"
	"github.com/ikkim/animestore-backend/internal/db"
	"github.com/ikkim/animestore-backend/internal/mailer"
	"github.com/ikkim/animestore-backend/internal/middleware"
	"github.com/ikkim/animestore-backend/internal/router"
	"github.com/ikkim/animestore-backend/internal/scheduler"
	"github.com/ikkim/animestore-backend/internal/storage"
	ws "github.com/ikkim/animestore-backend/internal/websocket"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"github.com/ikkim/animestore-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.ConfigFor(cfg.Server.Environment))
	logger.Info("Starting anime store backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
	})

	database, err := db.Open(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(database); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	var (
		blacklist service.TokenBlacklist
		revoked   middleware.RevocationChecker
		cache     service.Cache
	)
	if cfg.Redis.Enabled() {
		rdb, err := redis.New(&cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without token blacklist and cache", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer rdb.Close()
			blacklist, revoked, cache = rdb, rdb, rdb
		}
	}

	var blobs storage.BlobStore
	if cfg.S3.Bucket != "" {
		blobs = storage.NewS3Storage(
			context.Background(),
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
	} else {
		logger.Warn("S3 bucket not configured, image uploads are disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()
	go hub.Run(ctx)

	// Repositories
	userRepo := repository.NewUserRepository(database)
	categoryRepo := repository.NewCategoryRepository(database)
	productRepo := repository.NewProductRepository(database)
	cartRepo := repository.NewCartRepository(database)
	wishlistRepo := repository.NewWishlistRepository(database)
	orderRepo := repository.NewOrderRepository(database)
	reviewRepo := repository.NewReviewRepository(database)
	notificationRepo := repository.NewNotificationRepository(database)
	chatRepo := repository.NewChatRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)

	// Services
	notifier := service.NewOrderNotifier(
		hub,
		mailer.New(cfg.SMTP, cfg.Store.AdminNotifyEmail),
		userRepo,
		settingsRepo,
		cfg.Store,
	)
	authService := service.NewAuthService(userRepo, blacklist, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	productService := service.NewProductService(database, productRepo, categoryRepo, cartRepo, wishlistRepo, orderRepo, blobs)
	categoryService := service.NewCategoryService(database, categoryRepo, productRepo, blobs)
	reviewService := service.NewReviewService(database, reviewRepo, productRepo)
	cartService := service.NewCartService(database, cartRepo, productRepo)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo)
	checkoutService := service.NewCheckoutService(database, cartRepo, productRepo, orderRepo, notificationRepo, settingsRepo, notifier)
	orderService := service.NewOrderService(database, orderRepo, productRepo, notificationRepo, notifier)
	chatService := service.NewChatService(database, chatRepo, notificationRepo, hub)
	notificationService := service.NewNotificationService(notificationRepo, productRepo, settingsRepo, hub)
	settingsService := service.NewSettingsService(settingsRepo, cache)
	dashboardService := service.NewDashboardService(orderRepo, productRepo, userRepo, notificationRepo, chatRepo, settingsRepo)

	controllers := router.Controllers{
		Auth:         controller.NewAuthController(authService, cfg.JWT.CookieSecure),
		Product:      controller.NewProductController(productService),
		Category:     controller.NewCategoryController(categoryService),
		Review:       controller.NewReviewController(reviewService),
		Cart:         controller.NewCartController(cartService),
		Order:        controller.NewOrderController(checkoutService, orderService, service.NewOrderExporter(orderRepo)),
		Wishlist:     controller.NewWishlistController(wishlistService),
		Chat:         controller.NewChatController(chatService, hub, cfg.CORS.AllowedOrigins),
		Notification: controller.NewNotificationController(notificationService),
		Settings:     controller.NewSettingsController(settingsService),
		Dashboard:    controller.NewDashboardController(dashboardService),
		Upload:       controller.NewUploadController(blobs),
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, revoked)
	engine, err := router.NewRouter(controllers, authMiddleware, func() error { return db.Ping(database) }, cfg).Setup()
	if err != nil {
		logger.Fatal("Failed to set up router", err)
	}

	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs = scheduler.New(notificationService, cfg.Scheduler)
		if err := jobs.Start(); err != nil {
			logger.Fatal("Failed to start scheduler", err)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shut down", err)
	}
	if jobs != nil {
		jobs.Stop()
	}
	notifier.Wait()

	logger.Info("Server stopped successfully")
}
