package service

import (
	"context"
	"sync"
	"testing"

	"storefront-api/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItem_SameProductTwiceIncrements(t *testing.T) {
	mem := testutil.NewMemoryStore()
	svc := NewCartService(mem)
	ctx := context.Background()
	userID := uuid.New()
	lamp := mem.SeedProduct("Lamp", "10.00")

	first, created, err := svc.AddItem(ctx, userID, lamp.ID, 1)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, first.Quantity)

	second, created, err := svc.AddItem(ctx, userID, lamp.ID, 1)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Quantity)

	rows := mem.CartRows(userID)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Quantity)
}

func TestAddItem_ConcurrentAddsAreNotLost(t *testing.T) {
	mem := testutil.NewMemoryStore()
	svc := NewCartService(mem)
	userID := uuid.New()
	lamp := mem.SeedProduct("Lamp", "10.00")

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.AddItem(context.Background(), userID, lamp.ID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rows := mem.CartRows(userID)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Quantity)
}

func TestAddItem_Rejections(t *testing.T) {
	mem := testutil.NewMemoryStore()
	svc := NewCartService(mem)
	ctx := context.Background()
	userID := uuid.New()
	lamp := mem.SeedProduct("Lamp", "10.00")

	_, _, err := svc.AddItem(ctx, userID, lamp.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.AddItem(ctx, userID, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.AddItem(ctx, userID, lamp.ID, MaxQuantity+1)
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, mem.CartRows(userID))
}

func TestAddItem_IncrementPastMaxQuantity(t *testing.T) {
	mem := testutil.NewMemoryStore()
	svc := NewCartService(mem)
	ctx := context.Background()
	userID := uuid.New()
	lamp := mem.SeedProduct("Lamp", "10.00")

	_, _, err := svc.AddItem(ctx, userID, lamp.ID, MaxQuantity)
	require.NoError(t, err)

	_, _, err = svc.AddItem(ctx, userID, lamp.ID, 1)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, MaxQuantity, mem.CartRows(userID)[0].Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	mem := testutil.NewMemoryStore()
	svc := NewCartService(mem)
	ctx := context.Background()
	userID := uuid.New()
	lamp := mem.SeedProduct("Lamp", "10.00")

	item, _, err := svc.AddItem(ctx, userID, lamp.ID, 3)
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(ctx, userID, item.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.UpdateQuantity(ctx, userID, item.ID, MaxQuantity+1)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 3, mem.CartRows(userID)[0].Quantity)

	updated, err := svc.UpdateQuantity(ctx, userID, item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)
	require.NotNil(t, updated.Product)
	assert.Equal(t, "Lamp", updated.Product.Name)

	_, err = svc.UpdateQuantity(ctx, uuid.New(), item.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveItem_OtherUsersRowIsUntouched(t *testing.T) {
	mem := testutil.NewMemoryStore()
	svc := NewCartService(mem)
	ctx := context.Background()
	owner, intruder := uuid.New(), uuid.New()
	lamp := mem.SeedProduct("Lamp", "10.00")

	item, _, err := svc.AddItem(ctx, owner, lamp.ID, 1)
	require.NoError(t, err)

	err = svc.RemoveItem(ctx, intruder, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, mem.CartRows(owner), 1)

	require.NoError(t, svc.RemoveItem(ctx, owner, item.ID))
	assert.Empty(t, mem.CartRows(owner))
}

func TestClear_OnlyTouchesCaller(t *testing.T) {
	mem := testutil.NewMemoryStore()
	svc := NewCartService(mem)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	lamp := mem.SeedProduct("Lamp", "10.00")
	mug := mem.SeedProduct("Mug", "5.00")

	for _, id := range []uuid.UUID{lamp.ID, mug.ID} {
		_, _, err := svc.AddItem(ctx, alice, id, 1)
		require.NoError(t, err)
	}
	_, _, err := svc.AddItem(ctx, bob, lamp.ID, 1)
	require.NoError(t, err)

	n, err := svc.Clear(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Empty(t, mem.CartRows(alice))
	assert.Len(t, mem.CartRows(bob), 1)
}
