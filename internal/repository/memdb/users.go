package memdb

import (
	"context"
	"sort"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/Austinpowers7/storehive-backend/internal/entity"
	"github.com/Austinpowers7/storehive-backend/internal/repository"
)

type UserRepository struct {
	r runner
}

func isActiveUser(u *entity.User) bool {
	return u.DeletedAt == nil
}

func sortUsers(users []entity.User) {
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
}

// emailTaken reports whether an active user other than exceptID holds email.
func emailTaken(txn *memdb.Txn, email, exceptID string) (bool, error) {
	users, err := collect(txn, isActiveUser, tableUsers, "email", email)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func findActiveUser(txn *memdb.Txn, id string) (*entity.User, error) {
	user, err := first[entity.User](txn, tableUsers, "id", id)
	if err != nil {
		return nil, err
	}
	if !user.Active() {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (ur *UserRepository) Create(ctx context.Context, user *entity.User) error {
	return ur.r.write(ctx, func(txn *memdb.Txn) error {
		if ok, err := exists(txn, tableUsers, "id", user.ID); err != nil || ok {
			return conflictOr(err)
		}
		if taken, err := emailTaken(txn, user.Email, ""); err != nil || taken {
			return conflictOr(err)
		}
		u := *user
		return txn.Insert(tableUsers, &u)
	})
}

func (ur *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var user *entity.User
	err := ur.r.read(ctx, func(txn *memdb.Txn) (err error) {
		user, err = findActiveUser(txn, id)
		return err
	})
	return user, err
}

func (ur *UserRepository) FindAnyByID(ctx context.Context, id string) (*entity.User, error) {
	var user *entity.User
	err := ur.r.read(ctx, func(txn *memdb.Txn) (err error) {
		user, err = first[entity.User](txn, tableUsers, "id", id)
		return err
	})
	return user, err
}

func (ur *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user *entity.User
	err := ur.r.read(ctx, func(txn *memdb.Txn) error {
		users, err := collect(txn, isActiveUser, tableUsers, "email", email)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			return repository.ErrNotFound
		}
		user = &users[0]
		return nil
	})
	return user, err
}

func (ur *UserRepository) list(ctx context.Context, keep func(*entity.User) bool, index string, args ...interface{}) ([]entity.User, error) {
	var users []entity.User
	err := ur.r.read(ctx, func(txn *memdb.Txn) (err error) {
		users, err = collect(txn, keep, tableUsers, index, args...)
		return err
	})
	sortUsers(users)
	return users, err
}

func (ur *UserRepository) ListActive(ctx context.Context) ([]entity.User, error) {
	return ur.list(ctx, isActiveUser, "id")
}

func (ur *UserRepository) ListActiveByRole(ctx context.Context, role entity.Role) ([]entity.User, error) {
	return ur.list(ctx, func(u *entity.User) bool {
		return isActiveUser(u) && u.Role == role
	}, "id")
}

func (ur *UserRepository) ListActiveByStore(ctx context.Context, storeID string) ([]entity.User, error) {
	return ur.list(ctx, isActiveUser, "store", storeID)
}

func (ur *UserRepository) Update(ctx context.Context, id string, update entity.UserUpdate) (*entity.User, error) {
	var user *entity.User
	err := ur.r.write(ctx, func(txn *memdb.Txn) (err error) {
		user, err = findActiveUser(txn, id)
		if err != nil {
			return err
		}
		if update.Email != nil {
			if taken, err := emailTaken(txn, *update.Email, id); err != nil || taken {
				return conflictOr(err)
			}
			user.Email = *update.Email
		}
		if update.Password != nil {
			user.Password = *update.Password
		}
		user.UpdatedAt = time.Now().UTC()

		u := *user
		return txn.Insert(tableUsers, &u)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (ur *UserRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	return ur.r.write(ctx, func(txn *memdb.Txn) error {
		user, err := findActiveUser(txn, id)
		if err != nil {
			return err
		}
		user.DeletedAt = &at
		user.UpdatedAt = at
		return txn.Insert(tableUsers, user)
	})
}

func (ur *UserRepository) Restore(ctx context.Context, id string) (*entity.User, error) {
	var user *entity.User
	err := ur.r.write(ctx, func(txn *memdb.Txn) (err error) {
		user, err = first[entity.User](txn, tableUsers, "id", id)
		if err != nil {
			return err
		}
		if user.Active() {
			return repository.ErrNotFound
		}
		if taken, err := emailTaken(txn, user.Email, id); err != nil || taken {
			return conflictOr(err)
		}
		user.DeletedAt = nil
		user.UpdatedAt = time.Now().UTC()

		u := *user
		return txn.Insert(tableUsers, &u)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// conflictOr returns err when the lookup failed and ErrConflict otherwise.
func conflictOr(err error) error {
	if err != nil {
		return err
	}
	return repository.ErrConflict
}
