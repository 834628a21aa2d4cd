package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Austinpowers7/storehive-backend/internal/entity"
)

const userColumns = `id, email, password, role, first_name, last_name, phone_number, store_id, created_at, updated_at, deleted_at`

type UserRepository struct {
	q querier
}

func scanUser(row scanner) (*entity.User, error) {
	var user entity.User
	var storeID sql.NullString
	var deletedAt sql.NullTime

	err := row.Scan(&user.ID, &user.Email, &user.Password, &user.Role, &user.FirstName, &user.LastName,
		&user.PhoneNumber, &storeID, &user.CreatedAt, &user.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, mapError(err)
	}

	user.StoreID = storeID.String
	if deletedAt.Valid {
		t := deletedAt.Time
		user.DeletedAt = &t
	}
	return &user, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]entity.User, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, mapError(rows.Err())
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `INSERT INTO users (id, email, password, role, first_name, last_name, phone_number, store_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query, user.ID, user.Email, user.Password, user.Role, user.FirstName, user.LastName,
		user.PhoneNumber, nullString(user.StoreID), user.CreatedAt, user.UpdatedAt)
	return mapError(err)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? AND deleted_at IS NULL`
	return scanUser(r.q.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) FindAnyByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.q.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? AND deleted_at IS NULL`
	return scanUser(r.q.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) ListActive(ctx context.Context) ([]entity.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY created_at`)
}

func (r *UserRepository) ListActiveByRole(ctx context.Context, role entity.Role) ([]entity.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE role = ? AND deleted_at IS NULL ORDER BY created_at`, role)
}

func (r *UserRepository) ListActiveByStore(ctx context.Context, storeID string) ([]entity.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE store_id = ? AND deleted_at IS NULL ORDER BY created_at`, storeID)
}

func (r *UserRepository) Update(ctx context.Context, id string, update entity.UserUpdate) (*entity.User, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}
	if update.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *update.Email)
	}
	if update.Password != nil {
		sets = append(sets, "password = ?")
		args = append(args, *update.Password)
	}
	args = append(args, id)

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ? AND deleted_at IS NULL`
	if err := execAffecting(ctx, r.q, query, args...); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE users SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`
	return execAffecting(ctx, r.q, query, at, at, id)
}

func (r *UserRepository) Restore(ctx context.Context, id string) (*entity.User, error) {
	query := `UPDATE users SET deleted_at = NULL, updated_at = ? WHERE id = ? AND deleted_at IS NOT NULL`
	if err := execAffecting(ctx, r.q, query, time.Now().UTC(), id); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}
