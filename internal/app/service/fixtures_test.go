package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	"github.com/ikkim/animestore-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db               *gorm.DB
	userRepo         repository.UserRepository
	categoryRepo     repository.CategoryRepository
	productRepo      repository.ProductRepository
	cartRepo         repository.CartRepository
	wishlistRepo     repository.WishlistRepository
	orderRepo        repository.OrderRepository
	reviewRepo       repository.ReviewRepository
	notificationRepo repository.NotificationRepository
	chatRepo         repository.ChatRepository
	settingsRepo     repository.SettingsRepository
}

func newFixture(t *testing.T) *fixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return &fixture{
		db:               testDB,
		userRepo:         repository.NewUserRepository(testDB),
		categoryRepo:     repository.NewCategoryRepository(testDB),
		productRepo:      repository.NewProductRepository(testDB),
		cartRepo:         repository.NewCartRepository(testDB),
		wishlistRepo:     repository.NewWishlistRepository(testDB),
		orderRepo:        repository.NewOrderRepository(testDB),
		reviewRepo:       repository.NewReviewRepository(testDB),
		notificationRepo: repository.NewNotificationRepository(testDB),
		chatRepo:         repository.NewChatRepository(testDB),
		settingsRepo:     repository.NewSettingsRepository(testDB),
	}
}

func (f *fixture) createUser(t *testing.T, email string, role model.UserRole) *model.User {
	user := &model.User{
		Email:        email,
		PasswordHash: "hash",
		Name:         "مستخدم " + email,
		Role:         role,
	}
	require.NoError(t, f.userRepo.Create(user))
	return user
}

func (f *fixture) createCategory(t *testing.T, slug string) *model.Category {
	category := &model.Category{
		Name:   slug,
		NameAr: "فئة " + slug,
		Slug:   slug,
	}
	require.NoError(t, f.categoryRepo.Create(category))
	return category
}

func (f *fixture) createProduct(t *testing.T, categoryID uint, name string, price string, stock int) *model.Product {
	product := &model.Product{
		CategoryID: categoryID,
		Name:       name,
		NameAr:     name + " بالعربي",
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		Images:     []string{fmt.Sprintf("https://cdn.example.com/%s.jpg", name)},
	}
	require.NoError(t, f.productRepo.Create(product))
	require.NoError(t, f.categoryRepo.AdjustProductCount(categoryID, 1))
	return product
}

func (f *fixture) addToCart(t *testing.T, userID, productID uint, quantity int) *model.CartItem {
	item := &model.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	require.NoError(t, f.cartRepo.Create(item))
	return item
}

func (f *fixture) reloadProduct(t *testing.T, id uint) *model.Product {
	var product model.Product
	require.NoError(t, f.db.Unscoped().First(&product, id).Error)
	return &product
}

func testAddress() model.ShippingAddress {
	return model.ShippingAddress{
		FullName: "سارة أحمد",
		Phone:    "+966500000000",
		City:     "الرياض",
		Address:  "حي النخيل، شارع 12",
	}
}

type publishedEvent struct {
	userID  uint
	admins  bool
	event   string
	payload interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) PublishToAdmins(event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{admins: true, event: event, payload: payload})
}

func (p *fakePublisher) PublishToUser(userID uint, event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{userID: userID, event: event, payload: payload})
}

func (p *fakePublisher) named(event string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

type recordingObserver struct {
	mu      sync.Mutex
	placed  []*model.Order
	changed []model.OrderStatus
}

func (o *recordingObserver) OrderPlaced(_ context.Context, order *model.Order) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.placed = append(o.placed, order)
}

func (o *recordingObserver) OrderStatusChanged(_ context.Context, order *model.Order, _ model.OrderStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.changed = append(o.changed, order.Status)
}

func repositoryPage(page, size int) repository.Pagination {
	return repository.Pagination{Page: page, PageSize: size}
}
