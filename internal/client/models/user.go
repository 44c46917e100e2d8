// Package models defines the client-side data models of the RoadWatch
// dashboard core: the user identity, its role and the wire shapes exchanged
// with the REST backend.
package models

// Role is the authorization role of a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the identity the backend reports for the current session. The
// local copy is a cache and may be stale until the bootstrap check confirms it.
type User struct {
	ID          int64  `json:"id" validate:"required"`
	Username    string `json:"username" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        Role   `json:"role" validate:"required,oneof=USER ADMIN"`
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// DisplayName is the name used in prompts and notifications.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// Clone returns a copy that callers may keep without sharing state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
