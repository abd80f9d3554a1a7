// Package models defines server-side data models.
package models

import "time"

// Role is the authorization role stored on a user and copied into JWT claims.
type Role string

const (
	RoleUser       Role = "user"
	RoleSuperAdmin Role = "super_admin"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// ParseRole converts s into a Role, reporting whether it is known.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.IsValid()
}

// User is a persisted account. Email is unique across users.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	FirstName    string
	LastName     string
	Mobile       string
	ProfilePic   string // file store reference, empty when no picture was uploaded
	CreatedAt    time.Time
}

// UserUpdate carries the fields an admin may change. Nil means "keep".
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	Mobile       *string
	PasswordHash *string
	Role         *Role
}
