package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	apperrors "github.com/ikkim/animestore-backend/internal/errors"
	"github.com/ikkim/animestore-backend/internal/storage"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type CategoryInput struct {
	Name     string
	NameAr   string
	Slug     string
	ImageURL string
}

func (in *CategoryInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.NameAr = strings.TrimSpace(in.NameAr)
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.Name == "" || in.NameAr == "" {
		return apperrors.New(apperrors.KindValidation, apperrors.ValidationRequired, "اسم الفئة مطلوب باللغتين")
	}
	if !slugPattern.MatchString(in.Slug) {
		return apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidInput, "المعرّف المختصر يجب أن يحتوي على أحرف إنجليزية صغيرة وأرقام وشرطات فقط")
	}
	return nil
}

type CategoryService interface {
	ListCategories() ([]model.Category, error)
	GetCategoryBySlug(slug string) (*model.Category, error)
	CreateCategory(input CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, id uint, input CategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
}

type categoryService struct {
	db           *gorm.DB
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	blobs        storage.BlobStore
}

func NewCategoryService(
	db *gorm.DB,
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	blobs storage.BlobStore,
) CategoryService {
	return &categoryService{
		db:           db,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		blobs:        blobs,
	}
}

func (s *categoryService) ListCategories() ([]model.Category, error) {
	categories, err := s.categoryRepo.FindAll()
	if err != nil {
		return nil, apperrors.Upstream(err, "category")
	}
	return categories, nil
}

func (s *categoryService) GetCategoryBySlug(slug string) (*model.Category, error) {
	category, err := s.categoryRepo.FindBySlug(strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, apperrors.Upstream(err, "category")
	}
	return category, nil
}

// ensureSlugFree reports ErrCategorySlugExists when another category owns slug.
func (s *categoryService) ensureSlugFree(slug string, selfID uint) error {
	existing, err := s.categoryRepo.FindBySlug(slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Upstream(err, "category")
	}
	if existing.ID != selfID {
		return ErrCategorySlugExists
	}
	return nil
}

func (s *categoryService) CreateCategory(input CategoryInput) (*model.Category, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(input.Slug, 0); err != nil {
		return nil, err
	}
	category := &model.Category{
		Name:     input.Name,
		NameAr:   input.NameAr,
		Slug:     input.Slug,
		ImageURL: input.ImageURL,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, apperrors.Upstream(err, "create category")
	}
	logger.Info("Category created", map[string]interface{}{
		"category_id": category.ID,
		"slug":        category.Slug,
	})
	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uint, input CategoryInput) (*model.Category, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, apperrors.Upstream(err, "category")
	}
	if err := s.ensureSlugFree(input.Slug, id); err != nil {
		return nil, err
	}

	oldImage := category.ImageURL
	category.Name = input.Name
	category.NameAr = input.NameAr
	category.Slug = input.Slug
	category.ImageURL = input.ImageURL
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, apperrors.Upstream(err, "update category")
	}

	if oldImage != "" && oldImage != category.ImageURL {
		s.deleteImage(ctx, oldImage)
	}
	return category, nil
}

// DeleteCategory refuses while any live product still belongs to the category.
func (s *categoryService) DeleteCategory(ctx context.Context, id uint) error {
	var image string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categoryRepo := s.categoryRepo.WithTx(tx)
		category, err := categoryRepo.FindByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}
		image = category.ImageURL

		count, err := s.productRepo.WithTx(tx).CountByCategory(id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrCategoryNotEmpty
		}
		return categoryRepo.Delete(id)
	})
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return err
		}
		return apperrors.Upstream(err, "delete category")
	}

	if image != "" {
		s.deleteImage(ctx, image)
	}
	logger.Info("Category deleted", map[string]interface{}{
		"category_id": id,
	})
	return nil
}

func (s *categoryService) deleteImage(ctx context.Context, url string) {
	if s.blobs == nil {
		return
	}
	if err := s.blobs.DeleteByURL(ctx, url); err != nil {
		logger.Warn("Failed to delete category image", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
	}
}
