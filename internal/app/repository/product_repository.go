package repository

import (
	"strings"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductSort string

const (
	ProductSortNewest    ProductSort = "newest"
	ProductSortPriceAsc  ProductSort = "price_asc"
	ProductSortPriceDesc ProductSort = "price_desc"
	ProductSortRating    ProductSort = "rating"
)

type ProductFilter struct {
	CategorySlug string
	Search       string
	Featured     *bool
	OnSale       bool
	Sort         ProductSort
	Pagination
}

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	FindAll(filter ProductFilter) ([]model.Product, int64, error)
	FindByID(id uint) (*model.Product, error)
	FindByIDForUpdate(id uint) (*model.Product, error)
	Create(product *model.Product) error
	Update(product *model.Product) error
	Delete(id uint) error
	DecrementStock(id uint, quantity int) (bool, error)
	IncrementStock(id uint, quantity int) error
	UpdateRating(id uint, rating float64, reviewsCount int) error
	FindLowStock(threshold int) ([]model.Product, error)
	Count() (int64, error)
	CountLowStock(threshold int) (int64, error)
	CountByCategory(categoryID uint) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepository{db: tx}
}

func (r *productRepository) FindAll(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products in database", map[string]interface{}{
		"category": filter.CategorySlug,
		"search":   filter.Search,
		"sort":     filter.Sort,
		"page":     filter.Page,
	})

	query := r.db.Model(&model.Product{})

	if filter.CategorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("(LOWER(products.name) LIKE ? OR products.name_ar LIKE ?)", like, "%"+s+"%")
	}
	if filter.Featured != nil {
		query = query.Where("products.featured = ?", *filter.Featured)
	}
	if filter.OnSale {
		query = query.Where("products.sale_price IS NOT NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count products", err)
		return nil, 0, err
	}

	switch filter.Sort {
	case ProductSortPriceAsc:
		query = query.Order("COALESCE(products.sale_price, products.price) ASC")
	case ProductSortPriceDesc:
		query = query.Order("COALESCE(products.sale_price, products.price) DESC")
	case ProductSortRating:
		query = query.Order("products.rating DESC").Order("products.reviews_count DESC")
	default:
		query = query.Order("products.created_at DESC")
	}
	query = query.Order("products.id DESC")

	var products []model.Product
	if err := filter.Pagination.apply(query).Preload("Category").Find(&products).Error; err != nil {
		logger.Error("Failed to find products", err)
		return nil, 0, err
	}

	logger.Debug("Products found in database", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.Preload("Category").First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate reads the row under SELECT ... FOR UPDATE. Only
// meaningful inside a transaction.
func (r *productRepository) FindByIDForUpdate(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":        product.Name,
		"category_id": product.CategoryID,
	})
	if err := r.db.Omit("Category").Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}
	return nil
}

// Update writes the admin-editable columns. Rating and ReviewsCount are left
// to UpdateRating.
func (r *productRepository) Update(product *model.Product) error {
	err := r.db.Model(product).
		Select("category_id", "name", "name_ar", "description", "description_ar",
			"price", "sale_price", "stock", "images", "featured").
		Omit("Category").
		Updates(product).Error
	if err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
	}
	return err
}

func (r *productRepository) Delete(id uint) error {
	result := r.db.Delete(&model.Product{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete product in database", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStock subtracts quantity only when enough stock remains. It
// reports false when the guard rejected the update.
func (r *productRepository) DecrementStock(id uint, quantity int) (bool, error) {
	result := r.db.Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		logger.Error("Failed to decrement product stock", result.Error, map[string]interface{}{
			"product_id": id,
			"quantity":   quantity,
		})
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *productRepository) IncrementStock(id uint, quantity int) error {
	err := r.db.Unscoped().Model(&model.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", quantity)).Error
	if err != nil {
		logger.Error("Failed to increment product stock", err, map[string]interface{}{
			"product_id": id,
			"quantity":   quantity,
		})
	}
	return err
}

func (r *productRepository) UpdateRating(id uint, rating float64, reviewsCount int) error {
	return r.db.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating":        rating,
			"reviews_count": reviewsCount,
		}).Error
}

func (r *productRepository) FindLowStock(threshold int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("stock <= ?", threshold).Order("stock ASC").Find(&products).Error
	return products, err
}

func (r *productRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Count(&count).Error
	return count, err
}

func (r *productRepository) CountLowStock(threshold int) (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Where("stock <= ?", threshold).Count(&count).Error
	return count, err
}

func (r *productRepository) CountByCategory(categoryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}
