package service

import (
	"errors"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	apperrors "github.com/ikkim/animestore-backend/internal/errors"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"gorm.io/gorm"
)

type WishlistService interface {
	GetUserWishlist(userID uint) ([]model.WishlistItem, error)
	AddToWishlist(userID, productID uint) (*model.WishlistItem, error)
	RemoveFromWishlist(userID, productID uint) error
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

func NewWishlistService(
	wishlistRepo repository.WishlistRepository,
	productRepo repository.ProductRepository,
) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

// GetUserWishlist skips entries whose product is no longer in the catalog.
func (s *wishlistService) GetUserWishlist(userID uint) ([]model.WishlistItem, error) {
	items, err := s.wishlistRepo.FindByUserID(userID)
	if err != nil {
		return nil, apperrors.Upstream(err, "wishlist")
	}
	visible := items[:0]
	for _, item := range items {
		if item.Product.ID != 0 {
			visible = append(visible, item)
		}
	}
	return visible, nil
}

func (s *wishlistService) AddToWishlist(userID, productID uint) (*model.WishlistItem, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, apperrors.Upstream(err, "wishlist")
	}

	exists, err := s.wishlistRepo.Exists(userID, productID)
	if err != nil {
		return nil, apperrors.Upstream(err, "wishlist")
	}
	if exists {
		return nil, ErrWishlistExists
	}

	item := &model.WishlistItem{UserID: userID, ProductID: productID}
	if err := s.wishlistRepo.Create(item); err != nil {
		// a concurrent add lost the race on the unique index
		return nil, apperrors.Upstream(err, "wishlist")
	}
	item.Product = *product

	logger.Info("Product added to wishlist", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})
	return item, nil
}

func (s *wishlistService) RemoveFromWishlist(userID, productID uint) error {
	if err := s.wishlistRepo.Delete(userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWishlistNotFound
		}
		return apperrors.Upstream(err, "wishlist")
	}
	return nil
}
