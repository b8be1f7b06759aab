package repository

import (
	"github.com/ikkim/animestore-backend/internal/app/model"
	"gorm.io/gorm"
)

type WishlistRepository interface {
	WithTx(tx *gorm.DB) WishlistRepository
	FindByUserID(userID uint) ([]model.WishlistItem, error)
	Exists(userID, productID uint) (bool, error)
	Create(item *model.WishlistItem) error
	Delete(userID, productID uint) error
	DeleteByProductID(productID uint) error
}

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) WithTx(tx *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: tx}
}

func (r *wishlistRepository) FindByUserID(userID uint) ([]model.WishlistItem, error) {
	var items []model.WishlistItem
	err := r.db.Where("user_id = ?", userID).
		Preload("Product").
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *wishlistRepository) Exists(userID, productID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

func (r *wishlistRepository) Create(item *model.WishlistItem) error {
	return r.db.Omit("Product").Create(item).Error
}

func (r *wishlistRepository) Delete(userID, productID uint) error {
	result := r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&model.WishlistItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *wishlistRepository) DeleteByProductID(productID uint) error {
	return r.db.Where("product_id = ?", productID).Delete(&model.WishlistItem{}).Error
}
