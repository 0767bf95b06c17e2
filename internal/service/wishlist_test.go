package service

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	"github.com/Payphone-Digital/bizsite/internal/model"
	"github.com/Payphone-Digital/bizsite/internal/repository"
	"github.com/Payphone-Digital/bizsite/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistService_AddListRemove(t *testing.T) {
	db := testutil.NewDB(t)
	products := repository.NewProductRepository(db)
	svc := NewWishlistService(repository.NewWishlistRepository(db), products)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice", "alice@example.com", "secret1", model.RoleUser)
	bob := testutil.CreateUser(t, db, "bob", "bob@example.com", "secret1", model.RoleUser)
	hosting := testutil.CreateProduct(t, db, "Managed Hosting", "managed-hosting", true)
	care := testutil.CreateProduct(t, db, "Care Plan", "care-plan", false)

	item, err := svc.Add(ctx, alice.ID, hosting.ID)
	require.NoError(t, err)
	assert.Equal(t, hosting.ID, item.ProductID)
	assert.Equal(t, "managed-hosting", item.Product.Slug)

	_, err = svc.Add(ctx, alice.ID, care.ID)
	require.NoError(t, err)
	_, err = svc.Add(ctx, bob.ID, hosting.ID)
	require.NoError(t, err)

	items, err := svc.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.NotEmpty(t, it.Product.Name)
	}

	status, err := svc.Contains(ctx, alice.ID, care.ID)
	require.NoError(t, err)
	assert.True(t, status.InWishlist)

	require.NoError(t, svc.Remove(ctx, alice.ID, care.ID))

	status, err = svc.Contains(ctx, alice.ID, care.ID)
	require.NoError(t, err)
	assert.False(t, status.InWishlist)

	// Bob's copy of the same product is untouched by Alice's removals.
	require.NoError(t, svc.Remove(ctx, alice.ID, hosting.ID))
	status, err = svc.Contains(ctx, bob.ID, hosting.ID)
	require.NoError(t, err)
	assert.True(t, status.InWishlist)
}

func TestWishlistService_Errors(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewWishlistService(repository.NewWishlistRepository(db), repository.NewProductRepository(db))
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice", "alice@example.com", "secret1", model.RoleUser)
	product := testutil.CreateProduct(t, db, "Analytics", "analytics", false)

	_, err := svc.Add(ctx, alice.ID, 9999)
	assert.True(t, errors.Is(err, apperrors.ErrProductNotFound))

	_, err = svc.Add(ctx, alice.ID, product.ID)
	require.NoError(t, err)

	_, err = svc.Add(ctx, alice.ID, product.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeAlreadyExists, apperrors.GetErrorCode(err))
	assert.Equal(t, "product", apperrors.GetDomainError(err).Field)

	err = svc.Remove(ctx, alice.ID, 9999)
	assert.True(t, errors.Is(err, apperrors.ErrWishlistMissing))
}
