package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Austinpowers7/storehive-backend/internal/apperr"
	"github.com/Austinpowers7/storehive-backend/internal/auth"
	"github.com/Austinpowers7/storehive-backend/internal/authz"
	"github.com/Austinpowers7/storehive-backend/internal/entity"
	"github.com/Austinpowers7/storehive-backend/internal/repository"
)

type RegisterRequest struct {
	Email              string `json:"email"`
	Password           string `json:"password"`
	Role               string `json:"role"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	PhoneNumber        string `json:"phone_number"`
	StoreID            string `json:"store_id"`
	BusinessName       string `json:"business_name"`
	Address            string `json:"address"`
	RegistrationNumber string `json:"registration_number"`
}

type RegisterResult struct {
	User     *entity.User     `json:"user"`
	Business *entity.Business `json:"business,omitempty"`
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

// AuthService registers users, signs them in and runs cashier sessions.
type AuthService struct {
	store  repository.Store
	authz  *authz.Evaluator
	hasher auth.PasswordHasher
	tokens *auth.TokenIssuer
	now    func() time.Time

	newCode func() string
	encode  func(content string) (string, error)

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(store repository.Store, evaluator *authz.Evaluator, hasher auth.PasswordHasher, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{
		store:   store,
		authz:   evaluator,
		hasher:  hasher,
		tokens:  tokens,
		now:     func() time.Time { return time.Now().UTC() },
		newCode: newSessionCode,
		encode:  qrDataURL,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ensureEmailFree returns a conflict when an active user other than exceptID holds email.
func ensureEmailFree(ctx context.Context, users repository.UserRepository, email, exceptID string) error {
	existing, err := users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != exceptID {
		return apperr.Conflict("email already registered")
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	err := missingFields(
		[2]string{"email", req.Email},
		[2]string{"password", req.Password},
		[2]string{"role", req.Role},
		[2]string{"first_name", req.FirstName},
		[2]string{"last_name", req.LastName},
		[2]string{"phone_number", req.PhoneNumber},
	)
	if err != nil {
		return nil, err
	}

	role, err := entity.ParseRole(req.Role)
	if err != nil {
		return nil, apperr.Validation("invalid role")
	}
	if role == entity.RoleAdmin {
		logger.Warn().Msgf("Rejected admin self-registration for %s", req.Email)
		return nil, apperr.PermissionDenied("admin accounts cannot be registered")
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
	user := &entity.User{
		ID:          uuid.NewString(),
		Email:       email,
		Password:    hashed,
		Role:        role,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if role == entity.RoleOwner {
		return s.registerOwner(ctx, user, req)
	}

	if storeID := strings.TrimSpace(req.StoreID); storeID != "" {
		_, err := s.store.Stores().FindByID(ctx, storeID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Validation("invalid store id")
		}
		if err != nil {
			return nil, fail(err, "checking store")
		}
		user.StoreID = storeID
	}

	err = s.store.Users().Create(ctx, user)
	if errors.Is(err, repository.ErrConflict) {
		return nil, apperr.Conflict("email already registered")
	}
	if err != nil {
		return nil, fail(err, "creating user")
	}
	return &RegisterResult{User: user}, nil
}

// registerOwner creates the owner and its business atomically.
func (s *AuthService) registerOwner(ctx context.Context, user *entity.User, req RegisterRequest) (*RegisterResult, error) {
	if strings.TrimSpace(req.BusinessName) == "" {
		return nil, apperr.Validation("business name is required for owners")
	}

	business := &entity.Business{
		ID:                 uuid.NewString(),
		Name:               strings.TrimSpace(req.BusinessName),
		Address:            strings.TrimSpace(req.Address),
		RegistrationNumber: strings.TrimSpace(req.RegistrationNumber),
		OwnerID:            user.ID,
		CreatedAt:          user.CreatedAt,
	}

	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		if err := r.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return apperr.Conflict("email already registered")
			}
			return err
		}
		return r.Businesses().Create(ctx, business)
	})
	if err != nil {
		return nil, fail(err, "registering owner")
	}
	return &RegisterResult{User: user, Business: business}, nil
}

// Login never reveals whether the email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, err := s.store.Users().FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		// keep the timing of unknown emails close to wrong passwords
		_ = s.hasher.Compare(s.dummy(), password)
		return nil, apperr.InvalidCredentials()
	}
	if err != nil {
		return nil, fail(err, "finding user by email")
	}

	if err := s.hasher.Compare(user.Password, password); err != nil {
		return nil, apperr.InvalidCredentials()
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		logger.Error().Err(err).Msgf("Error signing token for user %s", user.ID)
		return nil, apperr.Internal(err)
	}
	return &LoginResult{Token: token, User: user}, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("storehive-unknown-user")
	})
	return s.dummyHash
}

// CreateCashierSession opens a point-of-sale session for the calling cashier.
func (s *AuthService) CreateCashierSession(ctx context.Context, actor authz.Actor, storeID string) (*entity.CashierSession, error) {
	storeID = strings.TrimSpace(storeID)

	switch actor.Role {
	case entity.RoleCashier:
		if actor.StoreID == "" {
			return nil, apperr.Validation("cashier is not assigned to a store")
		}
		if storeID == "" {
			storeID = actor.StoreID
		}
	case entity.RoleAdmin:
		if storeID == "" {
			return nil, apperr.Validation("store id is required")
		}
		_, err := s.store.Stores().FindByID(ctx, storeID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("store not found")
		}
		if err != nil {
			return nil, fail(err, "checking store")
		}
	}

	if err := s.authz.Authorize(ctx, actor, authz.CreateSession, authz.Target{StoreID: storeID}); err != nil {
		return nil, fail(err, "authorizing session creation")
	}

	code := s.newCode()
	qr, err := s.encode(code)
	if err != nil {
		logger.Error().Err(err).Msg("Error encoding session QR code")
		return nil, apperr.Internal(err)
	}

	session := &entity.CashierSession{
		ID:          uuid.NewString(),
		SessionCode: code,
		QRCode:      qr,
		CashierID:   actor.ID,
		StoreID:     storeID,
		Active:      true,
		CreatedAt:   s.now(),
	}

	err = s.store.Transaction(ctx, func(r repository.Repositories) error {
		_, err := r.Sessions().FindActiveByCashier(ctx, actor.ID)
		if err == nil {
			return apperr.Conflict("cashier already has an active session")
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := r.Sessions().Create(ctx, session); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				logger.Error().Err(err).Msgf("Duplicate session code for cashier %s", actor.ID)
				return apperr.Internal(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fail(err, "creating cashier session")
	}
	return session, nil
}

// EndCashierSession deactivates the caller's active session.
func (s *AuthService) EndCashierSession(ctx context.Context, actor authz.Actor) error {
	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		session, err := r.Sessions().FindActiveByCashier(ctx, actor.ID)
		if err != nil {
			return err
		}
		return r.Sessions().Deactivate(ctx, session.ID)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("no active session")
	}
	return fail(err, "ending cashier session")
}
