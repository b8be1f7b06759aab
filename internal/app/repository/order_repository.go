package repository

import (
	"time"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderFilter struct {
	UserID *uint
	Status model.OrderStatus
	From   *time.Time
	To     *time.Time
	Pagination
}

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByIDForUpdate(id uint) (*model.Order, error)
	FindAll(filter OrderFilter) ([]model.Order, int64, error)
	FindForExport(filter OrderFilter) ([]model.Order, error)
	FindRecent(limit int) ([]model.Order, error)
	UpdateStatus(id uint, status model.OrderStatus, trackingNumber *string) error
	Count() (int64, error)
	CountByStatus(status model.OrderStatus) (int64, error)
	SumRevenue() (decimal.Decimal, error)
	FindReferencedImages(urls []string) ([]string, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id ASC")
	}).Preload("User")
}

// Create inserts the order together with its items.
func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
		"items":        len(order.OrderItems),
	})

	if err := r.db.Omit("User").Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"order_number": order.OrderNumber,
			"user_id":      order.UserID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate locks the order row and loads its items.
func (r *orderRepository) FindByIDForUpdate(id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("OrderItems").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) filtered(filter OrderFilter) *gorm.DB {
	query := r.db.Model(&model.Order{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	return query
}

func (r *orderRepository) FindAll(filter OrderFilter) ([]model.Order, int64, error) {
	query := r.filtered(filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count orders", err)
		return nil, 0, err
	}

	var orders []model.Order
	err := filter.Pagination.apply(query).
		Preload("OrderItems").
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find orders", err)
		return nil, 0, err
	}

	logger.Debug("Orders found in database", map[string]interface{}{
		"count": len(orders),
		"total": total,
	})
	return orders, total, nil
}

// FindForExport returns every matching order without pagination.
func (r *orderRepository) FindForExport(filter OrderFilter) ([]model.Order, error) {
	var orders []model.Order
	err := r.filtered(filter).
		Preload("OrderItems").
		Preload("User").
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) FindRecent(limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus, trackingNumber *string) error {
	updates := map[string]interface{}{"status": status}
	if trackingNumber != nil {
		updates["tracking_number"] = *trackingNumber
	}

	result := r.db.Model(&model.Order{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to update order status in database", result.Error, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Order{}).Count(&count).Error
	return count, err
}

func (r *orderRepository) CountByStatus(status model.OrderStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.Order{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// SumRevenue totals every order that was not cancelled.
func (r *orderRepository) SumRevenue() (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.Model(&model.Order{}).
		Where("status <> ?", model.OrderStatusCancelled).
		Select("SUM(total_amount)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// FindReferencedImages returns the subset of urls that some order item still
// points at.
func (r *orderRepository) FindReferencedImages(urls []string) ([]string, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	var referenced []string
	err := r.db.Model(&model.OrderItem{}).
		Distinct("image_url").
		Where("image_url IN ?", urls).
		Pluck("image_url", &referenced).Error
	if err != nil {
		return nil, err
	}
	return referenced, nil
}
