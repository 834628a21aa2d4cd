// Package authz decides which actor may perform which action.
// Every role/action pair that is not explicitly allowed is denied.
package authz

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"

	"github.com/Austinpowers7/storehive-backend/internal/apperr"
	"github.com/Austinpowers7/storehive-backend/internal/entity"
	"github.com/Austinpowers7/storehive-backend/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type Action string

const (
	ManageUser    Action = "user.manage"
	RestoreUser   Action = "user.restore"
	ListUsers     Action = "user.list"
	ManageAdmins  Action = "admin.manage"
	ListStoreUser Action = "store.users"
	CreateStore   Action = "store.create"
	ManageProduct Action = "product.manage"
	CreateOrder   Action = "order.create"
	ConfirmOrder  Action = "order.confirm"
	ListOrders    Action = "order.list"
	CreateSession Action = "session.create"
)

// Actor is the authenticated caller.
type Actor struct {
	ID      string
	Email   string
	Role    entity.Role
	StoreID string
}

func (a Actor) Validate() error {
	if a.ID == "" {
		return errors.New("actor id is required")
	}
	if !a.Role.Valid() {
		return errors.New("actor role is invalid")
	}
	return nil
}

// Target carries the facts about the entity acted on. Only the fields the
// action needs are set.
type Target struct {
	UserRole        entity.Role
	StoreID         string
	BusinessOwnerID string
}

// StoreDirectory resolves the stores an owner controls.
type StoreDirectory interface {
	StoreIDsOwnedBy(ctx context.Context, ownerID string) ([]string, error)
}

// StoreDirectoryFunc adapts a function to StoreDirectory.
type StoreDirectoryFunc func(ctx context.Context, ownerID string) ([]string, error)

func (f StoreDirectoryFunc) StoreIDsOwnedBy(ctx context.Context, ownerID string) ([]string, error) {
	return f(ctx, ownerID)
}

// RepositoryDirectory follows owner -> business -> stores through the data store.
type RepositoryDirectory struct {
	repos repository.Repositories
}

func NewRepositoryDirectory(repos repository.Repositories) *RepositoryDirectory {
	return &RepositoryDirectory{repos: repos}
}

func (d *RepositoryDirectory) StoreIDsOwnedBy(ctx context.Context, ownerID string) ([]string, error) {
	business, err := d.repos.Businesses().FindByOwner(ctx, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	stores, err := d.repos.Stores().ListByBusiness(ctx, business.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(stores))
	for _, s := range stores {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

type Evaluator struct {
	stores StoreDirectory
}

func NewEvaluator(stores StoreDirectory) *Evaluator {
	return &Evaluator{stores: stores}
}

// CanAct reports whether actor may perform action on target. The error is
// non-nil only when an owner's stores could not be resolved.
func (e *Evaluator) CanAct(ctx context.Context, actor Actor, action Action, target Target) (bool, error) {
	if actor.Role == entity.RoleAdmin {
		return true, nil
	}

	switch action {
	case ManageUser:
		return e.canManageUser(ctx, actor, target)

	case ListStoreUser:
		if actor.Role != entity.RoleOwner && actor.Role != entity.RoleManager {
			return false, nil
		}
		return e.CanAccessStore(ctx, actor, target.StoreID)

	case CreateStore:
		return actor.Role == entity.RoleOwner && target.BusinessOwnerID == actor.ID, nil

	case ManageProduct:
		if actor.Role != entity.RoleOwner && actor.Role != entity.RoleManager {
			return false, nil
		}
		if target.StoreID == "" {
			return true, nil
		}
		return e.CanAccessStore(ctx, actor, target.StoreID)

	case CreateOrder:
		switch actor.Role {
		case entity.RoleCustomer:
			return true, nil
		case entity.RoleCashier:
			return actor.StoreID != "" && actor.StoreID == target.StoreID, nil
		}
		return false, nil

	case ConfirmOrder:
		return actor.Role == entity.RoleCashier, nil

	case ListOrders:
		return actor.Role == entity.RoleManager || actor.Role == entity.RoleOwner, nil

	case CreateSession:
		return actor.Role == entity.RoleCashier && actor.StoreID != "" && actor.StoreID == target.StoreID, nil
	}

	// RestoreUser, ListUsers, ManageAdmins and unknown actions are admin only
	return false, nil
}

func (e *Evaluator) canManageUser(ctx context.Context, actor Actor, target Target) (bool, error) {
	if !actor.Role.Outranks(target.UserRole) {
		return false, nil
	}

	switch actor.Role {
	case entity.RoleOwner:
		if target.UserRole != entity.RoleManager {
			return false, nil
		}
		return e.CanAccessStore(ctx, actor, target.StoreID)
	case entity.RoleManager:
		return target.UserRole == entity.RoleCashier && actor.StoreID != "" && actor.StoreID == target.StoreID, nil
	}
	return false, nil
}

// CanAccessStore reports whether actor may act within storeID.
func (e *Evaluator) CanAccessStore(ctx context.Context, actor Actor, storeID string) (bool, error) {
	switch actor.Role {
	case entity.RoleAdmin:
		return true, nil
	case entity.RoleManager:
		return storeID != "" && actor.StoreID == storeID, nil
	case entity.RoleOwner:
		if storeID == "" {
			return false, nil
		}
		ids, err := e.stores.StoreIDsOwnedBy(ctx, actor.ID)
		if err != nil {
			return false, err
		}
		for _, id := range ids {
			if id == storeID {
				return true, nil
			}
		}
		return false, nil
	}
	return false, nil
}

// Authorize returns a permission denied error unless actor may perform action.
func (e *Evaluator) Authorize(ctx context.Context, actor Actor, action Action, target Target) error {
	ok, err := e.CanAct(ctx, actor, action, target)
	if err != nil {
		logger.Error().Err(err).Msgf("Failed to evaluate %s for user %s", action, actor.ID)
		return err
	}
	if !ok {
		logger.Warn().Msgf("Denied %s for user %s with role %s", action, actor.ID, actor.Role)
		return apperr.PermissionDenied("access denied")
	}
	return nil
}
