package service

import (
	"context"
	"testing"

	"storefront-api/internal/auth"
	"storefront-api/internal/models"
	"storefront-api/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrderFor(mem *testutil.MemoryStore, userID uuid.UUID, number string) models.Order {
	return mem.SeedOrder(models.Order{
		UserID:      userID,
		OrderNumber: number,
		TotalAmount: decimal.RequireFromString("12.00"),
		Status:      models.OrderStatusPending,
	})
}

func TestOrderService_Visibility(t *testing.T) {
	mem := testutil.NewMemoryStore()
	svc := NewOrderService(mem, mem, &testutil.RecordingPublisher{})
	ctx := context.Background()

	alice := &auth.Identity{UserID: uuid.New()}
	bob := &auth.Identity{UserID: uuid.New()}
	admin := &auth.Identity{UserID: uuid.New()}
	mem.GrantRole(admin.UserID, models.RoleAdmin)

	aliceOrder := seedOrderFor(mem, alice.UserID, "ORD-A-000001")
	seedOrderFor(mem, bob.UserID, "ORD-B-000001")

	own, err := svc.ListOrders(ctx, alice)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, aliceOrder.ID, own[0].ID)

	all, err := svc.ListOrders(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.GetOrder(ctx, bob, aliceOrder.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	order, err := svc.GetOrder(ctx, admin, aliceOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-A-000001", order.OrderNumber)

	order, err = svc.GetOrder(ctx, alice, aliceOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, aliceOrder.ID, order.ID)
}

func TestOrderService_UpdateStatusPublishesChange(t *testing.T) {
	mem := testutil.NewMemoryStore()
	publisher := &testutil.RecordingPublisher{}
	svc := NewOrderService(mem, mem, publisher)
	ctx := context.Background()

	order := seedOrderFor(mem, uuid.New(), "ORD-A-000001")

	shipped := models.OrderStatusShipped
	updated, err := svc.UpdateOrder(ctx, order.ID, models.OrderPatch{Status: &shipped})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	require.Len(t, publisher.Changed, 1)
	assert.Equal(t, models.OrderStatusPending, publisher.Changed[0].PreviousStatus)
	assert.Equal(t, models.OrderStatusShipped, publisher.Changed[0].Status)

	address := "2 Side St"
	_, err = svc.UpdateOrder(ctx, order.ID, models.OrderPatch{DeliveryAddress: &address})
	require.NoError(t, err)
	assert.Len(t, publisher.Changed, 1)
}

func TestOrderService_UpdateRejectsUnknownStatus(t *testing.T) {
	mem := testutil.NewMemoryStore()
	svc := NewOrderService(mem, mem, &testutil.RecordingPublisher{})
	order := seedOrderFor(mem, uuid.New(), "ORD-A-000001")

	lost := "lost"
	_, err := svc.UpdateOrder(context.Background(), order.ID, models.OrderPatch{Status: &lost})
	assert.ErrorIs(t, err, ErrValidation)

	stored, err := mem.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
}

func TestOrderService_Delete(t *testing.T) {
	mem := testutil.NewMemoryStore()
	publisher := &testutil.RecordingPublisher{Fail: true}
	svc := NewOrderService(mem, mem, publisher)
	ctx := context.Background()
	order := seedOrderFor(mem, uuid.New(), "ORD-A-000001")

	require.NoError(t, svc.DeleteOrder(ctx, order.ID))
	assert.Equal(t, 0, mem.OrderCount())

	assert.ErrorIs(t, svc.DeleteOrder(ctx, order.ID), ErrNotFound)
}
