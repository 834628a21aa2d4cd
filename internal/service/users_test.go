package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Austinpowers7/storehive-backend/internal/apperr"
	"github.com/Austinpowers7/storehive-backend/internal/authz"
	"github.com/Austinpowers7/storehive-backend/internal/entity"
)

func (e *testEnv) addUser(t *testing.T, id string, role entity.Role, storeID string) *entity.User {
	t.Helper()
	user := &entity.User{
		ID:        id,
		Email:     id + "@example.com",
		Role:      role,
		StoreID:   storeID,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, e.store.Users().Create(context.Background(), user))
	return user
}

func strPtr(s string) *string {
	return &s
}

func TestManagerManagesOwnCashiers(t *testing.T) {
	env := newEnv(t)
	env.seed(t, 1, 1)
	ctx := context.Background()
	env.addUser(t, "cashier-1", entity.RoleCashier, testStore1)
	env.addUser(t, "cashier-2", entity.RoleCashier, testStore2)

	updated, err := env.users.UpdateUser(ctx, manager, "cashier-1", UpdateUserRequest{Email: strPtr("New@Example.com")})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)

	_, err = env.users.UpdateUser(ctx, manager, "cashier-2", UpdateUserRequest{Email: strPtr("x@example.com")})
	assert.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))

	assert.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(env.users.DeleteUser(ctx, owner, "cashier-1")))
	require.NoError(t, env.users.DeleteUser(ctx, manager, "cashier-1"))

	_, err = env.users.GetUser(ctx, "cashier-1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestOwnerManagesManagersOfOwnStores(t *testing.T) {
	env := newEnv(t)
	env.seed(t, 1, 1)
	ctx := context.Background()
	env.addUser(t, "manager-2", entity.RoleManager, testStore2)
	env.addUser(t, "manager-x", entity.RoleManager, "store-elsewhere")

	_, err := env.users.UpdateUser(ctx, owner, "manager-2", UpdateUserRequest{Password: strPtr("changed")})
	require.NoError(t, err)

	_, err = env.users.UpdateUser(ctx, owner, "manager-x", UpdateUserRequest{Password: strPtr("changed")})
	assert.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))
}

func TestUpdateUserConflictsAndValidation(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.addUser(t, "u1", entity.RoleCustomer, "")
	env.addUser(t, "u2", entity.RoleCustomer, "")

	_, err := env.users.UpdateUser(ctx, admin, "u1", UpdateUserRequest{Email: strPtr("u2@example.com")})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = env.users.UpdateUser(ctx, admin, "u1", UpdateUserRequest{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = env.users.UpdateUser(ctx, admin, "ghost", UpdateUserRequest{Email: strPtr("g@example.com")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRestoreUser(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.addUser(t, "u1", entity.RoleCustomer, "")

	_, err := env.users.RestoreUser(ctx, admin, "u1")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, env.users.DeleteUser(ctx, admin, "u1"))

	_, err = env.users.RestoreUser(ctx, manager, "u1")
	assert.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))

	restored, err := env.users.RestoreUser(ctx, admin, "u1")
	require.NoError(t, err)
	assert.True(t, restored.Active())

	require.NoError(t, env.users.DeleteUser(ctx, admin, "u1"))
	_, err = env.auth.Register(ctx, registration("u1@example.com", entity.RoleCustomer))
	require.NoError(t, err)

	_, err = env.users.RestoreUser(ctx, admin, "u1")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestListUsers(t *testing.T) {
	env := newEnv(t)
	env.seed(t, 1, 1)
	ctx := context.Background()
	env.addUser(t, "cashier-1", entity.RoleCashier, testStore1)
	env.addUser(t, "cashier-2", entity.RoleCashier, testStore2)

	users, err := env.users.ListActiveUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	_, err = env.users.ListActiveUsers(ctx, owner)
	assert.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))

	users, err = env.users.ListStoreUsers(ctx, manager, testStore1)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "cashier-1", users[0].ID)

	users, err = env.users.ListStoreUsers(ctx, owner, testStore2)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = env.users.ListStoreUsers(ctx, manager, testStore2)
	assert.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))
}

func TestGetOwnerProfile(t *testing.T) {
	env := newEnv(t)
	env.seed(t, 1, 1)

	profile, err := env.users.GetUser(context.Background(), testOwnerID)
	require.NoError(t, err)
	require.NotNil(t, profile.Business)
	assert.Equal(t, "biz-1", profile.Business.ID)
	assert.Len(t, profile.Stores, 2)
}

func TestAdminManagement(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.addUser(t, "customer-1", entity.RoleCustomer, "")

	_, err := env.users.CreateAdmin(ctx, owner, CreateAdminRequest{Email: "a2@example.com", Password: "pw"})
	assert.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))

	created, err := env.users.CreateAdmin(ctx, admin, CreateAdminRequest{Email: "a2@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, created.Role)

	admins, err := env.users.ListActiveAdmins(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, admins, 1)

	_, err = env.users.UpdateAdmin(ctx, admin, "customer-1", UpdateUserRequest{Password: strPtr("x")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	self := authz.Actor{ID: created.ID, Role: entity.RoleAdmin}
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(env.users.DeleteAdmin(ctx, self, created.ID)))
	require.NoError(t, env.users.DeleteAdmin(ctx, admin, created.ID))
}

func TestUserRoutesCannotTouchAdmins(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	self := env.addUser(t, "admin-1", entity.RoleAdmin, "")
	other := env.addUser(t, "admin-2", entity.RoleAdmin, "")
	actor := authz.Actor{ID: self.ID, Role: entity.RoleAdmin}

	err := env.users.DeleteUser(ctx, actor, self.ID)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = env.users.DeleteUser(ctx, actor, other.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = env.users.UpdateUser(ctx, actor, other.ID, UpdateUserRequest{Password: strPtr("x")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	admins, err := env.users.ListActiveAdmins(ctx, actor)
	require.NoError(t, err)
	assert.Len(t, admins, 2)
}

func TestBootstrapAdmin(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	first, created, err := env.users.BootstrapAdmin(ctx, "root@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entity.RoleAdmin, first.Role)

	_, created, err = env.users.BootstrapAdmin(ctx, "other@example.com", "pw")
	require.NoError(t, err)
	assert.False(t, created)

	login, err := env.auth.Login(ctx, "root@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, first.ID, login.User.ID)
}
