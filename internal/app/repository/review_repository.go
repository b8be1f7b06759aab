package repository

import (
	"github.com/ikkim/animestore-backend/internal/app/model"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	WithTx(tx *gorm.DB) ReviewRepository
	Create(review *model.Review) error
	FindByProductID(productID uint, page Pagination) ([]model.Review, int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) WithTx(tx *gorm.DB) ReviewRepository {
	return &reviewRepository{db: tx}
}

func (r *reviewRepository) Create(review *model.Review) error {
	return r.db.Omit("User").Create(review).Error
}

func (r *reviewRepository) FindByProductID(productID uint, page Pagination) ([]model.Review, int64, error) {
	query := r.db.Model(&model.Review{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []model.Review
	err := page.apply(query).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			// public listing: reviewer name only
			return db.Select("id", "name")
		}).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}
