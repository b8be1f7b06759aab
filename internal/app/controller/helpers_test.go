package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	"github.com/ikkim/animestore-backend/internal/app/service"
	"github.com/ikkim/animestore-backend/internal/db"
	apperrors "github.com/ikkim/animestore-backend/internal/errors"
	"github.com/ikkim/animestore-backend/internal/middleware"
	"github.com/ikkim/animestore-backend/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "controller-test-secret"

type testAPI struct {
	db       *gorm.DB
	router   *gin.Engine
	users    repository.UserRepository
	products repository.ProductRepository
	cats     repository.CategoryRepository
	carts    repository.CartRepository
	orders   repository.OrderRepository
}

// setupTestAPI mounts the customer and admin routes on an in-memory store.
// Requests are authenticated with the real JWT middleware.
func setupTestAPI(t *testing.T) *testAPI {
	require.NoError(t, RegisterValidators())
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	wishlistRepo := repository.NewWishlistRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	reviewRepo := repository.NewReviewRepository(testDB)
	notificationRepo := repository.NewNotificationRepository(testDB)
	settingsRepo := repository.NewSettingsRepository(testDB)

	authService := service.NewAuthService(userRepo, nil, testJWTSecret, time.Hour)
	productService := service.NewProductService(testDB, productRepo, categoryRepo, cartRepo, wishlistRepo, orderRepo, nil)
	categoryService := service.NewCategoryService(testDB, categoryRepo, productRepo, nil)
	cartService := service.NewCartService(testDB, cartRepo, productRepo)
	checkoutService := service.NewCheckoutService(testDB, cartRepo, productRepo, orderRepo, notificationRepo, settingsRepo, nil)
	orderService := service.NewOrderService(testDB, orderRepo, productRepo, notificationRepo, nil)
	reviewService := service.NewReviewService(testDB, reviewRepo, productRepo)

	authCtl := NewAuthController(authService, false)
	productCtl := NewProductController(productService)
	categoryCtl := NewCategoryController(categoryService)
	cartCtl := NewCartController(cartService)
	orderCtl := NewOrderController(checkoutService, orderService, service.NewOrderExporter(orderRepo))
	reviewCtl := NewReviewController(reviewService)

	auth := middleware.NewAuthMiddleware(testJWTSecret, nil)
	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", authCtl.Register)
	api.POST("/auth/login", authCtl.Login)
	api.POST("/auth/logout", auth.Authenticate(), authCtl.Logout)
	api.GET("/auth/me", auth.Authenticate(), authCtl.Me)

	api.GET("/products", productCtl.ListProducts)
	api.GET("/products/:id", productCtl.GetProduct)
	api.GET("/products/:id/reviews", reviewCtl.ListReviews)
	api.POST("/products/:id/reviews", auth.Authenticate(), reviewCtl.CreateReview)
	api.GET("/categories/:slug", categoryCtl.GetCategory)

	user := api.Group("", auth.Authenticate())
	user.GET("/cart", cartCtl.GetCart)
	user.POST("/cart", cartCtl.AddToCart)
	user.PUT("/cart/:id", cartCtl.UpdateCartItem)
	user.DELETE("/cart/:id", cartCtl.RemoveFromCart)
	user.POST("/checkout", orderCtl.Checkout)
	user.GET("/orders", orderCtl.ListMyOrders)
	user.GET("/orders/:id", orderCtl.GetOrder)
	user.PUT("/orders/:id/status", orderCtl.UpdateStatus)

	admin := api.Group("/admin", auth.Authenticate(), auth.RequireAdmin())
	admin.POST("/products", productCtl.CreateProduct)
	admin.PUT("/products/:id", productCtl.UpdateProduct)
	admin.DELETE("/products/:id", productCtl.DeleteProduct)
	admin.POST("/categories", categoryCtl.CreateCategory)
	admin.DELETE("/categories/:id", categoryCtl.DeleteCategory)
	admin.GET("/orders", orderCtl.ListOrders)
	admin.GET("/orders/export", orderCtl.ExportOrders)
	admin.PUT("/orders/:id/status", orderCtl.UpdateStatus)

	return &testAPI{
		db:       testDB,
		router:   r,
		users:    userRepo,
		products: productRepo,
		cats:     categoryRepo,
		carts:    cartRepo,
		orders:   orderRepo,
	}
}

func (a *testAPI) createUser(t *testing.T, email string, role model.UserRole) (*model.User, string) {
	user := &model.User{Email: email, PasswordHash: "hash", Name: email, Role: role}
	require.NoError(t, a.users.Create(user))
	token := mustToken(t, user.ID, email, string(role))
	return user, token
}

func (a *testAPI) createProduct(t *testing.T, name, price string, stock int) *model.Product {
	slug := "cat-" + name
	category := &model.Category{Name: slug, NameAr: slug, Slug: slug}
	require.NoError(t, a.cats.Create(category))
	product := &model.Product{
		CategoryID: category.ID,
		Name:       name,
		NameAr:     name + " بالعربي",
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
	}
	require.NoError(t, a.products.Create(product))
	require.NoError(t, a.cats.AdjustProductCount(category.ID, 1))
	return product
}

func mustToken(t *testing.T, userID uint, email, role string) string {
	token, _, err := util.GenerateAccessToken(userID, email, role, testJWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func errorCodeOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperrors.ErrorResponse
	decode(t, w, &body)
	return body.Code
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}
