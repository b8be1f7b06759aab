package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	apperrors "github.com/ikkim/animestore-backend/internal/errors"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"gorm.io/gorm"
)

type ReviewInput struct {
	Rating  int
	Title   string
	Comment string
}

type ReviewService interface {
	AddReview(ctx context.Context, userID, productID uint, input ReviewInput) (*model.Review, error)
	ListProductReviews(productID uint, page repository.Pagination) ([]model.Review, int64, error)
}

type reviewService struct {
	db          *gorm.DB
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

func NewReviewService(db *gorm.DB, reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository) ReviewService {
	return &reviewService{
		db:          db,
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

// runningAverage folds one more rating into an average over count ratings.
func runningAverage(average float64, count, rating int) float64 {
	return (average*float64(count) + float64(rating)) / float64(count+1)
}

// AddReview stores the review and refreshes the product's rating and review
// count in the same transaction. The product row is locked first so two
// reviews of the same product serialize instead of losing an update.
func (s *reviewService) AddReview(ctx context.Context, userID, productID uint, input ReviewInput) (*model.Review, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Comment = strings.TrimSpace(input.Comment)
	if input.Title == "" || input.Comment == "" {
		return nil, ErrMissingReviewField
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	review := &model.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    input.Rating,
		Title:     input.Title,
		Comment:   input.Comment,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		product, err := productRepo.FindByIDForUpdate(productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		if err := s.reviewRepo.WithTx(tx).Create(review); err != nil {
			return err
		}

		average := runningAverage(product.Rating, product.ReviewsCount, input.Rating)
		return productRepo.UpdateRating(productID, average, product.ReviewsCount+1)
	})
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		logger.Error("Failed to add review", err, map[string]interface{}{
			"product_id": productID,
			"user_id":    userID,
		})
		return nil, apperrors.Upstream(err, "review")
	}

	logger.Info("Review added", map[string]interface{}{
		"review_id":  review.ID,
		"product_id": productID,
		"rating":     review.Rating,
	})
	return review, nil
}

func (s *reviewService) ListProductReviews(productID uint, page repository.Pagination) ([]model.Review, int64, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrProductNotFound
		}
		return nil, 0, apperrors.Upstream(err, "review")
	}
	reviews, total, err := s.reviewRepo.FindByProductID(productID, page)
	if err != nil {
		return nil, 0, apperrors.Upstream(err, "review")
	}
	return reviews, total, nil
}
