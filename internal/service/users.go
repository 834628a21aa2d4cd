package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Austinpowers7/storehive-backend/internal/apperr"
	"github.com/Austinpowers7/storehive-backend/internal/auth"
	"github.com/Austinpowers7/storehive-backend/internal/authz"
	"github.com/Austinpowers7/storehive-backend/internal/entity"
	"github.com/Austinpowers7/storehive-backend/internal/repository"
)

type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type CreateAdminRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

// UserProfile is a user with the business and stores it owns, if any.
type UserProfile struct {
	*entity.User
	Business *entity.Business `json:"business,omitempty"`
	Stores   []entity.Store   `json:"stores,omitempty"`
}

// UserService manages users and admins.
type UserService struct {
	store  repository.Store
	authz  *authz.Evaluator
	hasher auth.PasswordHasher
	now    func() time.Time
}

func NewUserService(store repository.Store, evaluator *authz.Evaluator, hasher auth.PasswordHasher) *UserService {
	return &UserService{
		store:  store,
		authz:  evaluator,
		hasher: hasher,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *UserService) findActive(ctx context.Context, id string) (*entity.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fail(err, "finding user")
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*UserProfile, error) {
	user, err := s.findActive(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := &UserProfile{User: user}
	if user.Role != entity.RoleOwner {
		return profile, nil
	}

	business, err := s.store.Businesses().FindByOwner(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return profile, nil
	}
	if err != nil {
		return nil, fail(err, "finding owner business")
	}
	profile.Business = business

	profile.Stores, err = s.store.Stores().ListByBusiness(ctx, business.ID)
	if err != nil {
		return nil, fail(err, "listing owner stores")
	}
	return profile, nil
}

// authorizeManage gates changes to non-admin users. Admins are only managed
// through the admin operations.
func (s *UserService) authorizeManage(ctx context.Context, actor authz.Actor, target *entity.User) error {
	if target.Role == entity.RoleAdmin {
		return apperr.NotFound("user not found")
	}
	err := s.authz.Authorize(ctx, actor, authz.ManageUser, authz.Target{UserRole: target.Role, StoreID: target.StoreID})
	return fail(err, "authorizing user management")
}

func (s *UserService) UpdateUser(ctx context.Context, actor authz.Actor, id string, req UpdateUserRequest) (*entity.User, error) {
	target, err := s.findActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeManage(ctx, actor, target); err != nil {
		return nil, err
	}
	return s.update(ctx, target.ID, req)
}

func (s *UserService) update(ctx context.Context, id string, req UpdateUserRequest) (*entity.User, error) {
	var update entity.UserUpdate
	if req.Email == nil && req.Password == nil {
		return nil, apperr.Validation("nothing to update")
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email == "" {
			return nil, apperr.Validation("email must not be empty")
		}
		if err := ensureEmailFree(ctx, s.store.Users(), email, id); err != nil {
			return nil, fail(err, "checking email")
		}
		update.Email = &email
	}
	if req.Password != nil {
		if *req.Password == "" {
			return nil, apperr.Validation("password must not be empty")
		}
		hashed, err := s.hasher.Hash(*req.Password)
		if err != nil {
			logger.Error().Err(err).Msg("Error hashing password")
			return nil, apperr.Internal(err)
		}
		update.Password = &hashed
	}

	user, err := s.store.Users().Update(ctx, id, update)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.NotFound("user not found")
	case errors.Is(err, repository.ErrConflict):
		return nil, apperr.Conflict("email already registered")
	case err != nil:
		return nil, fail(err, "updating user")
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, actor authz.Actor, id string) error {
	target, err := s.findActive(ctx, id)
	if err != nil {
		return err
	}
	if target.ID == actor.ID {
		return apperr.Validation("users cannot delete themselves")
	}
	if err := s.authorizeManage(ctx, actor, target); err != nil {
		return err
	}
	return s.softDelete(ctx, target.ID)
}

func (s *UserService) softDelete(ctx context.Context, id string) error {
	err := s.store.Users().SoftDelete(ctx, id, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("user not found")
	}
	return fail(err, "deleting user")
}

func (s *UserService) RestoreUser(ctx context.Context, actor authz.Actor, id string) (*entity.User, error) {
	if err := s.authz.Authorize(ctx, actor, authz.RestoreUser, authz.Target{}); err != nil {
		return nil, fail(err, "authorizing user restore")
	}

	target, err := s.store.Users().FindAnyByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fail(err, "finding user")
	}
	if target.Active() {
		return nil, apperr.Validation("user is not deleted")
	}

	user, err := s.store.Users().Restore(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.NotFound("user not found")
	case errors.Is(err, repository.ErrConflict):
		return nil, apperr.Conflict("email is used by another active user")
	case err != nil:
		return nil, fail(err, "restoring user")
	}
	return user, nil
}

func (s *UserService) ListActiveUsers(ctx context.Context, actor authz.Actor) ([]entity.User, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ListUsers, authz.Target{}); err != nil {
		return nil, fail(err, "authorizing user listing")
	}
	users, err := s.store.Users().ListActive(ctx)
	if err != nil {
		return nil, fail(err, "listing users")
	}
	return users, nil
}

func (s *UserService) ListStoreUsers(ctx context.Context, actor authz.Actor, storeID string) ([]entity.User, error) {
	if strings.TrimSpace(storeID) == "" {
		return nil, apperr.Validation("store id is required")
	}
	if err := s.authz.Authorize(ctx, actor, authz.ListStoreUser, authz.Target{StoreID: storeID}); err != nil {
		return nil, fail(err, "authorizing store user listing")
	}
	users, err := s.store.Users().ListActiveByStore(ctx, storeID)
	if err != nil {
		return nil, fail(err, "listing store users")
	}
	return users, nil
}

func (s *UserService) CreateAdmin(ctx context.Context, actor authz.Actor, req CreateAdminRequest) (*entity.User, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ManageAdmins, authz.Target{}); err != nil {
		return nil, fail(err, "authorizing admin creation")
	}
	return s.createAdmin(ctx, req)
}

func (s *UserService) createAdmin(ctx context.Context, req CreateAdminRequest) (*entity.User, error) {
	err := missingFields([2]string{"email", req.Email}, [2]string{"password", req.Password})
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	if err := ensureEmailFree(ctx, s.store.Users(), email, ""); err != nil {
		return nil, fail(err, "checking email")
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		logger.Error().Err(err).Msg("Error hashing password")
		return nil, apperr.Internal(err)
	}

	now := s.now()
	admin := &entity.User{
		ID:          uuid.NewString(),
		Email:       email,
		Password:    hashed,
		Role:        entity.RoleAdmin,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.store.Users().Create(ctx, admin)
	if errors.Is(err, repository.ErrConflict) {
		return nil, apperr.Conflict("email already registered")
	}
	if err != nil {
		return nil, fail(err, "creating admin")
	}
	return admin, nil
}

func (s *UserService) ListActiveAdmins(ctx context.Context, actor authz.Actor) ([]entity.User, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ManageAdmins, authz.Target{}); err != nil {
		return nil, fail(err, "authorizing admin listing")
	}
	admins, err := s.store.Users().ListActiveByRole(ctx, entity.RoleAdmin)
	if err != nil {
		return nil, fail(err, "listing admins")
	}
	return admins, nil
}

func (s *UserService) findAdmin(ctx context.Context, actor authz.Actor, id string) (*entity.User, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ManageAdmins, authz.Target{}); err != nil {
		return nil, fail(err, "authorizing admin management")
	}
	admin, err := s.store.Users().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && admin.Role != entity.RoleAdmin) {
		return nil, apperr.NotFound("admin not found")
	}
	if err != nil {
		return nil, fail(err, "finding admin")
	}
	return admin, nil
}

func (s *UserService) UpdateAdmin(ctx context.Context, actor authz.Actor, id string, req UpdateUserRequest) (*entity.User, error) {
	admin, err := s.findAdmin(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, admin.ID, req)
}

func (s *UserService) DeleteAdmin(ctx context.Context, actor authz.Actor, id string) error {
	admin, err := s.findAdmin(ctx, actor, id)
	if err != nil {
		return err
	}
	if admin.ID == actor.ID {
		return apperr.Validation("admins cannot delete themselves")
	}
	return s.softDelete(ctx, admin.ID)
}

// BootstrapAdmin creates the first admin. It reports false when an active
// admin already exists.
func (s *UserService) BootstrapAdmin(ctx context.Context, email, password string) (*entity.User, bool, error) {
	admins, err := s.store.Users().ListActiveByRole(ctx, entity.RoleAdmin)
	if err != nil {
		return nil, false, fail(err, "listing admins")
	}
	if len(admins) > 0 {
		return nil, false, nil
	}

	admin, err := s.createAdmin(ctx, CreateAdminRequest{
		Email:     email,
		Password:  password,
		FirstName: "System",
		LastName:  "Admin",
	})
	if err != nil {
		return nil, false, err
	}
	return admin, true, nil
}
