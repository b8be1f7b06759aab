package repository

import (
	"testing"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductTest(t *testing.T) (*gorm.DB, ProductRepository, *model.Category) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	category := &model.Category{Name: "Figures", NameAr: "مجسمات", Slug: "figures"}
	require.NoError(t, testDB.Create(category).Error)

	return testDB, NewProductRepository(testDB), category
}

func newProduct(categoryID uint, name string, price string, stock int) *model.Product {
	return &model.Product{
		CategoryID: categoryID,
		Name:       name,
		NameAr:     name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
	}
}

func TestProductRepository_Create(t *testing.T) {
	_, repo, category := setupProductTest(t)

	product := newProduct(category.ID, "Naruto Figure", "249.00", 10)
	product.Images = []string{"https://cdn.example.com/products/a.jpg", "https://cdn.example.com/products/b.jpg"}

	require.NoError(t, repo.Create(product))
	assert.NotZero(t, product.ID)

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.True(t, found.Price.Equal(decimal.RequireFromString("249")))
	assert.False(t, found.SalePrice.Valid)
	assert.Equal(t, []string{"https://cdn.example.com/products/a.jpg", "https://cdn.example.com/products/b.jpg"}, []string(found.Images))
	require.NotNil(t, found.Category)
	assert.Equal(t, "figures", found.Category.Slug)
}

func TestProductRepository_FindAll_Filters(t *testing.T) {
	testDB, repo, figures := setupProductTest(t)

	manga := &model.Category{Name: "Manga", NameAr: "مانجا", Slug: "manga"}
	require.NoError(t, testDB.Create(manga).Error)

	naruto := newProduct(figures.ID, "Naruto Figure", "250", 5)
	naruto.Featured = true
	levi := newProduct(figures.ID, "Levi Figure", "300", 5)
	levi.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString("150"))
	onePiece := newProduct(manga.ID, "One Piece Vol. 1", "45", 40)
	onePiece.NameAr = "ون بيس"
	for _, p := range []*model.Product{naruto, levi, onePiece} {
		require.NoError(t, repo.Create(p))
	}

	t.Run("by category", func(t *testing.T) {
		products, total, err := repo.FindAll(ProductFilter{CategorySlug: "figures"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, products, 2)
	})

	t.Run("search latin is case insensitive", func(t *testing.T) {
		products, _, err := repo.FindAll(ProductFilter{Search: "naruto"})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, naruto.ID, products[0].ID)
	})

	t.Run("search arabic", func(t *testing.T) {
		products, _, err := repo.FindAll(ProductFilter{Search: "ون بيس"})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, onePiece.ID, products[0].ID)
	})

	t.Run("featured", func(t *testing.T) {
		featured := true
		products, _, err := repo.FindAll(ProductFilter{Featured: &featured})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, naruto.ID, products[0].ID)
	})

	t.Run("on sale", func(t *testing.T) {
		products, _, err := repo.FindAll(ProductFilter{OnSale: true})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, levi.ID, products[0].ID)
	})

	t.Run("price ascending uses sale price", func(t *testing.T) {
		products, _, err := repo.FindAll(ProductFilter{Sort: ProductSortPriceAsc})
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, []uint{onePiece.ID, levi.ID, naruto.ID},
			[]uint{products[0].ID, products[1].ID, products[2].ID})
	})

	t.Run("pagination", func(t *testing.T) {
		products, total, err := repo.FindAll(ProductFilter{Pagination: Pagination{Page: 2, PageSize: 2}})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, products, 1)
	})
}

func TestProductRepository_DecrementStock(t *testing.T) {
	_, repo, category := setupProductTest(t)

	product := newProduct(category.ID, "Gojo Figure", "300", 3)
	require.NoError(t, repo.Create(product))

	ok, err := repo.DecrementStock(product.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementStock(product.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok, "guard must reject a decrement below zero")

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.Stock)

	require.NoError(t, repo.IncrementStock(product.ID, 4))
	found, err = repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Stock)
}

func TestProductRepository_UpdateKeepsRating(t *testing.T) {
	_, repo, category := setupProductTest(t)

	product := newProduct(category.ID, "Levi Figure", "300", 3)
	require.NoError(t, repo.Create(product))
	require.NoError(t, repo.UpdateRating(product.ID, 4.5, 2))

	product.Name = "Levi Ackerman Figure"
	product.Rating = 0
	product.ReviewsCount = 0
	require.NoError(t, repo.Update(product))

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Levi Ackerman Figure", found.Name)
	assert.InDelta(t, 4.5, found.Rating, 1e-9)
	assert.Equal(t, 2, found.ReviewsCount)
}

func TestProductRepository_DeleteHidesProduct(t *testing.T) {
	_, repo, category := setupProductTest(t)

	product := newProduct(category.ID, "Keychain", "20", 3)
	require.NoError(t, repo.Create(product))
	require.NoError(t, repo.Delete(product.ID))

	_, err := repo.FindByID(product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(product.ID), gorm.ErrRecordNotFound)
}

func TestProductRepository_LowStock(t *testing.T) {
	_, repo, category := setupProductTest(t)

	require.NoError(t, repo.Create(newProduct(category.ID, "A", "10", 1)))
	require.NoError(t, repo.Create(newProduct(category.ID, "B", "10", 5)))
	require.NoError(t, repo.Create(newProduct(category.ID, "C", "10", 9)))

	low, err := repo.FindLowStock(5)
	require.NoError(t, err)
	assert.Len(t, low, 2)
	assert.Equal(t, "A", low[0].Name)

	count, err := repo.CountLowStock(5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCategoryRepository_AdjustProductCount(t *testing.T) {
	testDB, _, category := setupProductTest(t)
	repo := NewCategoryRepository(testDB)

	require.NoError(t, repo.AdjustProductCount(category.ID, 3))
	require.NoError(t, repo.AdjustProductCount(category.ID, -1))

	found, err := repo.FindBySlug("figures")
	require.NoError(t, err)
	assert.Equal(t, 2, found.ProductCount)

	assert.ErrorIs(t, repo.AdjustProductCount(9999, 1), gorm.ErrRecordNotFound)
}
