package user

import (
	"time"

	"github.com/google/uuid"
)

// Role is the custom_role driving all page-level access control. New users
// land as PENDING until an admin assigns a working role.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleStoreManager Role = "STORE_MANAGER"
	RoleBaker        Role = "BAKER"
	RolePicker       Role = "PICKER"
	RoleCourier      Role = "COURIER"
	RolePending      Role = "PENDING"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStoreManager, RoleBaker, RolePicker, RoleCourier, RolePending:
		return true
	}
	return false
}

// User represents a staff member or pending signup.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	CustomRole   Role      `json:"custom_role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
