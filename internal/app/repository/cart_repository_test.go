package repository

import (
	"testing"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCartRepository_Lifecycle(t *testing.T) {
	testDB, productRepo, category := setupProductTest(t)
	repo := NewCartRepository(testDB)

	user := &model.User{Email: "cart@example.com", PasswordHash: "hash", Name: "Cart User", Role: model.RoleUser}
	require.NoError(t, testDB.Create(user).Error)
	product := newProduct(category.ID, "Hoodie", "129", 10)
	require.NoError(t, productRepo.Create(product))

	item := &model.CartItem{UserID: user.ID, ProductID: product.ID, Quantity: 2}
	require.NoError(t, repo.Create(item))

	dup := &model.CartItem{UserID: user.ID, ProductID: product.ID, Quantity: 1}
	assert.Error(t, repo.Create(dup), "one line per user and product")

	items, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Hoodie", items[0].Product.Name)

	item.Quantity = 5
	require.NoError(t, repo.Update(item))
	found, err := repo.FindByUserAndProduct(user.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Quantity)

	deleted, err := repo.DeleteByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.FindByID(item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(item.ID), gorm.ErrRecordNotFound)
}

func TestCartRepository_AddQuantityUpserts(t *testing.T) {
	testDB, productRepo, category := setupProductTest(t)
	repo := NewCartRepository(testDB)

	user := &model.User{Email: "upsert@example.com", PasswordHash: "hash", Name: "Cart User", Role: model.RoleUser}
	require.NoError(t, testDB.Create(user).Error)
	product := newProduct(category.ID, "Poster", "20", 10)
	require.NoError(t, productRepo.Create(product))

	first, err := repo.AddQuantity(user.ID, product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Quantity)

	second, err := repo.AddQuantity(user.ID, product.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	err = testDB.Transaction(func(tx *gorm.DB) error {
		items, err := repo.WithTx(tx).FindByUserIDForUpdate(user.ID)
		require.Len(t, items, 1)
		assert.Equal(t, "Poster", items[0].Product.Name)
		return err
	})
	require.NoError(t, err)
}

func TestWishlistRepository_Lifecycle(t *testing.T) {
	testDB, productRepo, category := setupProductTest(t)
	repo := NewWishlistRepository(testDB)

	product := newProduct(category.ID, "Necklace", "59", 10)
	require.NoError(t, productRepo.Create(product))

	require.NoError(t, repo.Create(&model.WishlistItem{UserID: 7, ProductID: product.ID}))
	exists, err := repo.Exists(7, product.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	items, err := repo.FindByUserID(7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Necklace", items[0].Product.Name)

	require.NoError(t, repo.Delete(7, product.ID))
	assert.ErrorIs(t, repo.Delete(7, product.ID), gorm.ErrRecordNotFound)
}
