package entity

import (
	"fmt"
	"strings"
)

// Role is the permission level of a user.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOwner    Role = "OWNER"
	RoleManager  Role = "MANAGER"
	RoleCashier  Role = "CASHIER"
	RoleCustomer Role = "CUSTOMER"
)

// Roles lists every role from the highest to the lowest rank.
var Roles = []Role{RoleAdmin, RoleOwner, RoleManager, RoleCashier, RoleCustomer}

func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 5
	case RoleOwner:
		return 4
	case RoleManager:
		return 3
	case RoleCashier:
		return 2
	case RoleCustomer:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.rank() > 0
}

// Outranks reports whether r sits strictly above other in the hierarchy
// ADMIN > OWNER > MANAGER > CASHIER > CUSTOMER.
func (r Role) Outranks(other Role) bool {
	return r.Valid() && r.rank() > other.rank()
}

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
