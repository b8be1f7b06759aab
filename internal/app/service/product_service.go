package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	apperrors "github.com/ikkim/animestore-backend/internal/errors"
	"github.com/ikkim/animestore-backend/internal/storage"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductInput struct {
	CategoryID    uint
	Name          string
	NameAr        string
	Description   string
	DescriptionAr string
	Price         decimal.Decimal
	SalePrice     *decimal.Decimal
	Stock         int
	Images        []string
	Featured      bool
}

func (in *ProductInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.NameAr = strings.TrimSpace(in.NameAr)
	in.Description = strings.TrimSpace(in.Description)
	in.DescriptionAr = strings.TrimSpace(in.DescriptionAr)
	if in.Name == "" || in.NameAr == "" {
		return apperrors.New(apperrors.KindValidation, apperrors.ValidationRequired, "اسم المنتج مطلوب باللغتين")
	}
	if !in.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if in.SalePrice != nil && (!in.SalePrice.IsPositive() || in.SalePrice.GreaterThanOrEqual(in.Price)) {
		return ErrInvalidPrice.WithMessage("سعر التخفيض يجب أن يكون أقل من السعر الأصلي")
	}
	if in.Stock < 0 {
		return ErrInvalidStock
	}
	images := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	in.Images = images
	return nil
}

func (in *ProductInput) apply(p *model.Product) {
	p.CategoryID = in.CategoryID
	p.Name = in.Name
	p.NameAr = in.NameAr
	p.Description = in.Description
	p.DescriptionAr = in.DescriptionAr
	p.Price = in.Price.Round(2)
	p.SalePrice = decimal.NullDecimal{}
	if in.SalePrice != nil {
		p.SalePrice = decimal.NewNullDecimal(in.SalePrice.Round(2))
	}
	p.Stock = in.Stock
	p.Images = pq.StringArray(append([]string(nil), in.Images...))
	p.Featured = in.Featured
}

type ProductService interface {
	ListProducts(filter repository.ProductFilter) ([]model.Product, int64, error)
	GetProduct(id uint) (*model.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, input ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type productService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	cartRepo     repository.CartRepository
	wishlistRepo repository.WishlistRepository
	orderRepo    repository.OrderRepository
	blobs        storage.BlobStore
}

// NewProductService builds the catalog service. blobs may be nil, in which
// case removed product images are left in storage.
func NewProductService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	cartRepo repository.CartRepository,
	wishlistRepo repository.WishlistRepository,
	orderRepo repository.OrderRepository,
	blobs storage.BlobStore,
) ProductService {
	return &productService{
		db:           db,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cartRepo:     cartRepo,
		wishlistRepo: wishlistRepo,
		orderRepo:    orderRepo,
		blobs:        blobs,
	}
}

func (s *productService) ListProducts(filter repository.ProductFilter) ([]model.Product, int64, error) {
	products, total, err := s.productRepo.FindAll(filter)
	if err != nil {
		return nil, 0, apperrors.Upstream(err, "product")
	}
	return products, total, nil
}

func (s *productService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, apperrors.Upstream(err, "product")
	}
	return product, nil
}

func requireCategory(repo repository.CategoryRepository, id uint) error {
	if _, err := repo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (s *productService) CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}

	product := &model.Product{}
	input.apply(product)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categoryRepo := s.categoryRepo.WithTx(tx)
		if err := requireCategory(categoryRepo, input.CategoryID); err != nil {
			return err
		}
		if err := s.productRepo.WithTx(tx).Create(product); err != nil {
			return err
		}
		return categoryRepo.AdjustProductCount(input.CategoryID, 1)
	})
	if err != nil {
		return nil, s.wrap(err, "create product")
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id":  product.ID,
		"category_id": product.CategoryID,
	})
	return s.GetProduct(product.ID)
}

// UpdateProduct replaces the editable fields. Moving the product to another
// category shifts one unit of ProductCount between the two categories in the
// same transaction. Images dropped by the edit are removed from storage after
// commit unless an order item still shows them.
func (s *productService) UpdateProduct(ctx context.Context, id uint, input ProductInput) (*model.Product, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}

	var removed []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		categoryRepo := s.categoryRepo.WithTx(tx)

		product, err := productRepo.FindByIDForUpdate(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		oldCategory := product.CategoryID
		if input.CategoryID != oldCategory {
			if err := requireCategory(categoryRepo, input.CategoryID); err != nil {
				return err
			}
		}

		removed, err = s.unreferencedImages(tx, droppedImages(product.Images, input.Images))
		if err != nil {
			return err
		}
		input.apply(product)
		if err := productRepo.Update(product); err != nil {
			return err
		}

		if input.CategoryID != oldCategory {
			if err := categoryRepo.AdjustProductCount(oldCategory, -1); err != nil {
				return err
			}
			if err := categoryRepo.AdjustProductCount(input.CategoryID, 1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.wrap(err, "update product")
	}

	s.deleteImages(ctx, removed)
	logger.Info("Product updated", map[string]interface{}{
		"product_id": id,
	})
	return s.GetProduct(id)
}

// DeleteProduct soft-deletes the product, drops it from every cart and
// wishlist, and decrements its category count. Existing orders keep their
// snapshot of it, including the image files they reference.
func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	var images []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		product, err := productRepo.FindByIDForUpdate(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		images, err = s.unreferencedImages(tx, product.Images)
		if err != nil {
			return err
		}

		if err := productRepo.Delete(id); err != nil {
			return err
		}
		if err := s.cartRepo.WithTx(tx).DeleteByProductID(id); err != nil {
			return err
		}
		if err := s.wishlistRepo.WithTx(tx).DeleteByProductID(id); err != nil {
			return err
		}
		return s.categoryRepo.WithTx(tx).AdjustProductCount(product.CategoryID, -1)
	})
	if err != nil {
		return s.wrap(err, "delete product")
	}

	s.deleteImages(ctx, images)
	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

func (s *productService) wrap(err error, context string) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	logger.Error("Product write failed", err, map[string]interface{}{
		"operation": context,
	})
	return apperrors.Upstream(err, context)
}

func (s *productService) deleteImages(ctx context.Context, urls []string) {
	if s.blobs == nil {
		return
	}
	for _, url := range urls {
		if err := s.blobs.DeleteByURL(ctx, url); err != nil {
			logger.Warn("Failed to delete product image", map[string]interface{}{
				"url":   url,
				"error": err.Error(),
			})
		}
	}
}

// unreferencedImages filters out URLs that order item snapshots still use.
func (s *productService) unreferencedImages(tx *gorm.DB, urls []string) ([]string, error) {
	if len(urls) == 0 || s.orderRepo == nil {
		return urls, nil
	}
	referenced, err := s.orderRepo.WithTx(tx).FindReferencedImages(urls)
	if err != nil {
		return nil, err
	}
	if len(referenced) == 0 {
		return urls, nil
	}
	return droppedImages(urls, referenced), nil
}

// droppedImages returns the URLs in before that are missing from after.
func droppedImages(before, after []string) []string {
	keep := make(map[string]struct{}, len(after))
	for _, url := range after {
		keep[url] = struct{}{}
	}
	var dropped []string
	for _, url := range before {
		if _, ok := keep[url]; !ok {
			dropped = append(dropped, url)
		}
	}
	return dropped
}
