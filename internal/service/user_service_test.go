package service

import (
	"context"
	"testing"

	"storefront-api/internal/auth"
	"storefront-api/internal/models"
	"storefront-api/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetRoles(t *testing.T) {
	mem := testutil.NewMemoryStore()
	svc := NewUserService(mem)
	ctx := context.Background()
	userID := uuid.New()
	mem.SeedProfile(userID, "ada@example.com")
	mem.GrantRole(userID, models.RoleUser)

	_, err := svc.SetRoles(ctx, userID, []string{"admin", "owner"})
	assert.ErrorIs(t, err, ErrValidation)
	roles, err := mem.GetRoles(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, roles)

	applied, err := svc.SetRoles(ctx, userID, []string{"user", "admin", "admin"})
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "user"}, applied)

	isAdmin, err := svc.HasRole(ctx, userID, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	_, err = svc.SetRoles(ctx, uuid.New(), []string{"user"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMe(t *testing.T) {
	mem := testutil.NewMemoryStore()
	svc := NewUserService(mem)
	ctx := context.Background()
	identity := &auth.Identity{UserID: uuid.New(), Email: "grace@example.com"}

	me, err := svc.Me(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, identity.UserID, me.ID)
	assert.Equal(t, "grace@example.com", me.Email)
	assert.Equal(t, []string{}, me.Roles)

	name := "Grace Hopper"
	_, err = svc.UpdateMe(ctx, identity, models.ProfilePatch{FullName: &name})
	require.NoError(t, err)

	me, err = svc.Me(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", me.FullName)
}

func TestListUsersAndDelete(t *testing.T) {
	mem := testutil.NewMemoryStore()
	svc := NewUserService(mem)
	ctx := context.Background()
	ada, grace := uuid.New(), uuid.New()
	mem.SeedProfile(ada, "ada@example.com")
	mem.SeedProfile(grace, "grace@example.com")
	mem.GrantRole(grace, models.RoleAdmin)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, grace, users[0].ID)
	assert.Equal(t, []string{"admin"}, users[0].Roles)
	assert.Equal(t, []string{}, users[1].Roles)

	require.NoError(t, svc.DeleteUser(ctx, grace))
	_, err = svc.GetUser(ctx, grace)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteUser(ctx, grace), ErrNotFound)
}
