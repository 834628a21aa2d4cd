package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Austinpowers7/storehive-backend/internal/apperr"
	"github.com/Austinpowers7/storehive-backend/internal/entity"
)

// owner-1 owns store-a and store-b; store-c belongs to someone else.
func testEvaluator() *Evaluator {
	return NewEvaluator(StoreDirectoryFunc(func(ctx context.Context, ownerID string) ([]string, error) {
		if ownerID == "owner-1" {
			return []string{"store-a", "store-b"}, nil
		}
		return nil, nil
	}))
}

func actorFor(role entity.Role) Actor {
	switch role {
	case entity.RoleOwner:
		return Actor{ID: "owner-1", Role: role}
	case entity.RoleAdmin:
		return Actor{ID: "admin-1", Role: role}
	default:
		return Actor{ID: "user-1", Role: role, StoreID: "store-a"}
	}
}

func TestManageUserRoleMatrix(t *testing.T) {
	e := testEvaluator()
	ctx := context.Background()

	for _, actorRole := range entity.Roles {
		for _, targetRole := range entity.Roles {
			for _, store := range []string{"store-a", "store-c", ""} {
				actor := actorFor(actorRole)
				target := Target{UserRole: targetRole, StoreID: store}

				var want bool
				switch actorRole {
				case entity.RoleAdmin:
					want = true
				case entity.RoleOwner:
					want = targetRole == entity.RoleManager && store == "store-a"
				case entity.RoleManager:
					want = targetRole == entity.RoleCashier && store == "store-a"
				}

				got, err := e.CanAct(ctx, actor, ManageUser, target)
				require.NoError(t, err)
				assert.Equal(t, want, got, "actor %s target %s store %q", actorRole, targetRole, store)
			}
		}
	}
}

func TestAdminOnlyActions(t *testing.T) {
	e := testEvaluator()
	ctx := context.Background()

	for _, action := range []Action{RestoreUser, ListUsers, ManageAdmins, Action("unknown")} {
		for _, role := range entity.Roles {
			got, err := e.CanAct(ctx, actorFor(role), action, Target{StoreID: "store-a"})
			require.NoError(t, err)
			assert.Equal(t, role == entity.RoleAdmin, got, "%s by %s", action, role)
		}
	}
}

func TestOrderActions(t *testing.T) {
	e := testEvaluator()
	ctx := context.Background()

	tests := []struct {
		name   string
		actor  Actor
		action Action
		target Target
		want   bool
	}{
		{"customer creates order", Actor{ID: "c", Role: entity.RoleCustomer}, CreateOrder, Target{StoreID: "store-c"}, true},
		{"cashier sells in own store", actorFor(entity.RoleCashier), CreateOrder, Target{StoreID: "store-a"}, true},
		{"cashier sells in other store", actorFor(entity.RoleCashier), CreateOrder, Target{StoreID: "store-c"}, false},
		{"manager cannot create order", actorFor(entity.RoleManager), CreateOrder, Target{StoreID: "store-a"}, false},
		{"cashier confirms", actorFor(entity.RoleCashier), ConfirmOrder, Target{}, true},
		{"manager cannot confirm", actorFor(entity.RoleManager), ConfirmOrder, Target{}, false},
		{"manager lists orders", actorFor(entity.RoleManager), ListOrders, Target{StoreID: "store-c"}, true},
		{"owner lists orders", actorFor(entity.RoleOwner), ListOrders, Target{StoreID: "store-c"}, true},
		{"cashier cannot list orders", actorFor(entity.RoleCashier), ListOrders, Target{}, false},
		{"customer cannot list orders", Actor{ID: "c", Role: entity.RoleCustomer}, ListOrders, Target{}, false},
		{"cashier opens session in own store", actorFor(entity.RoleCashier), CreateSession, Target{StoreID: "store-a"}, true},
		{"cashier opens session elsewhere", actorFor(entity.RoleCashier), CreateSession, Target{StoreID: "store-c"}, false},
		{"cashier without store", Actor{ID: "x", Role: entity.RoleCashier}, CreateSession, Target{}, false},
		{"owner creates store in own business", actorFor(entity.RoleOwner), CreateStore, Target{BusinessOwnerID: "owner-1"}, true},
		{"owner creates store in other business", actorFor(entity.RoleOwner), CreateStore, Target{BusinessOwnerID: "owner-2"}, false},
		{"manager cannot create store", actorFor(entity.RoleManager), CreateStore, Target{BusinessOwnerID: "user-1"}, false},
		{"owner manages products of own store", actorFor(entity.RoleOwner), ManageProduct, Target{StoreID: "store-b"}, true},
		{"owner cannot manage other store products", actorFor(entity.RoleOwner), ManageProduct, Target{StoreID: "store-c"}, false},
		{"manager manages products of own store", actorFor(entity.RoleManager), ManageProduct, Target{StoreID: "store-a"}, true},
		{"cashier cannot manage products", actorFor(entity.RoleCashier), ManageProduct, Target{StoreID: "store-a"}, false},
		{"manager lists own store users", actorFor(entity.RoleManager), ListStoreUser, Target{StoreID: "store-a"}, true},
		{"manager cannot list other store users", actorFor(entity.RoleManager), ListStoreUser, Target{StoreID: "store-b"}, false},
		{"owner lists users of any owned store", actorFor(entity.RoleOwner), ListStoreUser, Target{StoreID: "store-b"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.CanAct(ctx, tt.actor, tt.action, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOwnerWithoutBusinessCannotAccessStores(t *testing.T) {
	e := testEvaluator()
	ok, err := e.CanAccessStore(context.Background(), Actor{ID: "owner-9", Role: entity.RoleOwner}, "store-a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthorize(t *testing.T) {
	e := testEvaluator()
	ctx := context.Background()

	err := e.Authorize(ctx, actorFor(entity.RoleCustomer), ListOrders, Target{})
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))

	assert.NoError(t, e.Authorize(ctx, actorFor(entity.RoleAdmin), ManageAdmins, Target{}))

	failing := NewEvaluator(StoreDirectoryFunc(func(ctx context.Context, ownerID string) ([]string, error) {
		return nil, errors.New("db down")
	}))
	err = failing.Authorize(ctx, actorFor(entity.RoleOwner), ListStoreUser, Target{StoreID: "store-a"})
	require.Error(t, err)
	assert.False(t, apperr.Is(err, apperr.KindPermissionDenied))
}

func TestActorValidate(t *testing.T) {
	assert.NoError(t, Actor{ID: "u", Role: entity.RoleCashier}.Validate())
	assert.Error(t, Actor{Role: entity.RoleCashier}.Validate())
	assert.Error(t, Actor{ID: "u", Role: "ROOT"}.Validate())
}
