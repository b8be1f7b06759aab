package service

import (
	"testing"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewWishlistService(f.wishlistRepo, f.productRepo)

	user := f.createUser(t, "wish@example.com", model.RoleUser)
	category := f.createCategory(t, "posters")
	poster := f.createProduct(t, category.ID, "poster", "15", 20)

	item, err := svc.AddToWishlist(user.ID, poster.ID)
	require.NoError(t, err)
	assert.Equal(t, poster.ID, item.Product.ID)

	_, err = svc.AddToWishlist(user.ID, poster.ID)
	assert.ErrorIs(t, err, ErrWishlistExists)

	_, err = svc.AddToWishlist(user.ID, 777)
	assert.ErrorIs(t, err, ErrProductNotFound)

	items, err := svc.GetUserWishlist(user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, svc.RemoveFromWishlist(user.ID, poster.ID))
	assert.ErrorIs(t, svc.RemoveFromWishlist(user.ID, poster.ID), ErrWishlistNotFound)
}

func TestWishlistService_HidesDeletedProducts(t *testing.T) {
	f := newFixture(t)
	svc := NewWishlistService(f.wishlistRepo, f.productRepo)

	user := f.createUser(t, "wish@example.com", model.RoleUser)
	category := f.createCategory(t, "posters")
	kept := f.createProduct(t, category.ID, "kept", "15", 20)
	dropped := f.createProduct(t, category.ID, "dropped", "15", 20)

	_, err := svc.AddToWishlist(user.ID, kept.ID)
	require.NoError(t, err)
	_, err = svc.AddToWishlist(user.ID, dropped.ID)
	require.NoError(t, err)
	require.NoError(t, f.productRepo.Delete(dropped.ID))

	items, err := svc.GetUserWishlist(user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, kept.ID, items[0].ProductID)
}
