// Package domain defines the core business entities of the catalog.
package domain

import (
	"slices"
	"time"
)

// Role names a permission level. Roles are stored per user and mapped to
// authorities when a request principal is built.
type Role string

const (
	// RoleAdmin grants catalog administration (books, categories, images).
	RoleAdmin Role = "ADMIN"
	// RoleUser grants standard access.
	RoleUser Role = "USER"
)

// AuthProviderLocal marks accounts registered with a username and password.
const AuthProviderLocal = "local"

// User represents an account in the system. An account is either local
// (registered with credentials) or federated (provisioned from an external
// identity provider on first sight of a valid token).
type User struct {
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"` // never serialized
	DisplayName  string    `json:"display_name,omitempty"`

	// AuthProvider and AuthSub identify the external provider and its stable
	// subject for federated accounts. Both are empty-provider "local" for
	// credential accounts.
	AuthProvider string `json:"auth_provider"`
	AuthSub      string `json:"auth_sub,omitempty"`

	Roles []Role `json:"roles"`
}

// IsFederated reports whether this account was provisioned from an external
// identity provider.
func (u *User) IsFederated() bool {
	return u.AuthProvider != "" && u.AuthProvider != AuthProviderLocal
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role Role) bool {
	return slices.Contains(u.Roles, role)
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// RoleFromName maps a free-form role name to a Role. Only "admin" (any case
// handled by the caller) maps to RoleAdmin, everything else is a standard user.
func RoleFromName(name string) Role {
	if name == "admin" || name == "ADMIN" {
		return RoleAdmin
	}
	return RoleUser
}
