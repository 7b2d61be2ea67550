package session

import (
	"fmt"
)

// Role is the closed set of portal roles.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// UnmarshalText rejects roles outside the closed set.
func (r *Role) UnmarshalText(b []byte) error {
	role := Role(b)
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, string(b))
	}
	*r = role
	return nil
}

// User is the authenticated portal user as issued by the remote API.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Clone returns a copy that does not alias u. Nil in, nil out.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
