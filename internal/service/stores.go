package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Austinpowers7/storehive-backend/internal/apperr"
	"github.com/Austinpowers7/storehive-backend/internal/authz"
	"github.com/Austinpowers7/storehive-backend/internal/entity"
	"github.com/Austinpowers7/storehive-backend/internal/repository"
)

type CreateStoreRequest struct {
	Name               string `json:"name"`
	BusinessID         string `json:"business_id"`
	BusinessName       string `json:"business_name"`
	Address            string `json:"address"`
	RegistrationNumber string `json:"registration_number"`
}

// StoreDetail is a store with its business.
type StoreDetail struct {
	*entity.Store
	Business *entity.Business `json:"business,omitempty"`
}

type StoreService struct {
	store repository.Store
	authz *authz.Evaluator
	now   func() time.Time
}

func NewStoreService(store repository.Store, evaluator *authz.Evaluator) *StoreService {
	return &StoreService{
		store: store,
		authz: evaluator,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *StoreService) findBusiness(ctx context.Context, id string) (*entity.Business, error) {
	business, err := s.store.Businesses().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("business not found")
	}
	if err != nil {
		return nil, fail(err, "finding business")
	}
	return business, nil
}

func (s *StoreService) CreateStore(ctx context.Context, actor authz.Actor, req CreateStoreRequest) (*StoreDetail, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("store name is required")
	}
	businessID := strings.TrimSpace(req.BusinessID)

	store := &entity.Store{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: s.now(),
	}

	var business *entity.Business
	var err error
	switch {
	case actor.Role == entity.RoleAdmin:
		if businessID == "" {
			return nil, apperr.Validation("business id is required")
		}
		if business, err = s.findBusiness(ctx, businessID); err != nil {
			return nil, err
		}

	case actor.Role == entity.RoleOwner && businessID != "":
		if business, err = s.findBusiness(ctx, businessID); err != nil {
			return nil, err
		}

	case actor.Role == entity.RoleOwner:
		business, err = s.store.Businesses().FindByOwner(ctx, actor.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return s.createWithBusiness(ctx, actor, store, req)
		}
		if err != nil {
			return nil, fail(err, "finding owner business")
		}

	default:
		return nil, fail(s.authz.Authorize(ctx, actor, authz.CreateStore, authz.Target{}), "authorizing store creation")
	}

	if err := s.authz.Authorize(ctx, actor, authz.CreateStore, authz.Target{BusinessOwnerID: business.OwnerID}); err != nil {
		return nil, fail(err, "authorizing store creation")
	}

	store.BusinessID = business.ID
	if err := s.store.Stores().Create(ctx, store); err != nil {
		return nil, fail(err, "creating store")
	}
	return &StoreDetail{Store: store, Business: business}, nil
}

// createWithBusiness creates the first business of an owner together with its store.
func (s *StoreService) createWithBusiness(ctx context.Context, actor authz.Actor, store *entity.Store, req CreateStoreRequest) (*StoreDetail, error) {
	if strings.TrimSpace(req.BusinessName) == "" {
		return nil, apperr.Validation("business name is required to create the first store")
	}

	business := &entity.Business{
		ID:                 uuid.NewString(),
		Name:               strings.TrimSpace(req.BusinessName),
		Address:            strings.TrimSpace(req.Address),
		RegistrationNumber: strings.TrimSpace(req.RegistrationNumber),
		OwnerID:            actor.ID,
		CreatedAt:          store.CreatedAt,
	}
	if err := s.authz.Authorize(ctx, actor, authz.CreateStore, authz.Target{BusinessOwnerID: business.OwnerID}); err != nil {
		return nil, fail(err, "authorizing store creation")
	}
	store.BusinessID = business.ID

	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		if err := r.Businesses().Create(ctx, business); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return apperr.Conflict("owner already has a business")
			}
			return err
		}
		return r.Stores().Create(ctx, store)
	})
	if err != nil {
		return nil, fail(err, "creating business and store")
	}
	return &StoreDetail{Store: store, Business: business}, nil
}

func (s *StoreService) ListStores(ctx context.Context) ([]entity.Store, error) {
	stores, err := s.store.Stores().List(ctx)
	if err != nil {
		return nil, fail(err, "listing stores")
	}
	return stores, nil
}

func (s *StoreService) GetStore(ctx context.Context, id string) (*StoreDetail, error) {
	store, err := s.store.Stores().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("store not found")
	}
	if err != nil {
		return nil, fail(err, "finding store")
	}

	business, err := s.findBusiness(ctx, store.BusinessID)
	if err != nil {
		return nil, err
	}
	return &StoreDetail{Store: store, Business: business}, nil
}

func (s *StoreService) ListStoresByBusiness(ctx context.Context, businessID string) ([]entity.Store, error) {
	if _, err := s.findBusiness(ctx, businessID); err != nil {
		return nil, err
	}
	stores, err := s.store.Stores().ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, fail(err, "listing business stores")
	}
	return stores, nil
}
