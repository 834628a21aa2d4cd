package entity

import "time"

// WalkInCustomerID is the customer recorded on cashier-assisted sales
// that were not made for a registered customer.
const WalkInCustomerID = "walk-in-customer-id"

type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Password    string     `json:"-"`
	Role        Role       `json:"role"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	PhoneNumber string     `json:"phone_number"`
	StoreID     string     `json:"store_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// Active reports whether the user has not been soft-deleted.
func (u *User) Active() bool {
	return u.DeletedAt == nil
}

// UserUpdate holds the fields a user update may change. Nil fields are left as is.
type UserUpdate struct {
	Email    *string
	Password *string
}

/*
Mysql Schema:
CREATE TABLE users (
	id CHAR(36) PRIMARY KEY,
	email VARCHAR(255) NOT NULL,
	...
	deleted_at DATETIME(6) NULL,
	active_email VARCHAR(255) GENERATED ALWAYS AS (IF(deleted_at IS NULL, email, NULL)) STORED,
	UNIQUE KEY users_active_email_idx (active_email)
);

The generated column keeps email unique among non-deleted users only, so a
soft-deleted account does not block re-registration.
*/
