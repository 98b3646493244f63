// Package model defines the data structures used throughout the application.
package model

import "time"

// Role controls which operations a user may perform.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee" // writer: drafts and submits articles for review
	RoleReader   Role = "reader"
)

// Roles lists every known role, in privilege order.
var Roles = []Role{RoleAdmin, RoleEmployee, RoleReader}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// User represents a registered account.
//
// PasswordHash holds the bcrypt hash of the user's password and is never
// serialized. GitHubID is non-zero only for accounts created through the
// GitHub OAuth flow; those accounts have no usable password. Email is unique
// across all users regardless of how the account was created.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	GitHubID     int64     `json:"-"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// The permission predicates below are nil-safe: an anonymous caller is
// represented by a nil *User and every predicate answers false for it.
// Services take the caller as an explicit parameter instead of consulting
// ambient session state, so the same checks work for HTTP requests, tests,
// and any future non-HTTP entry point.

// HasRole reports whether the user is authenticated and holds exactly r.
func (u *User) HasRole(r Role) bool {
	return u != nil && u.Role == r
}

// HasAnyRole reports whether the user holds at least one of the given roles.
func (u *User) HasAnyRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// CanCreateArticles reports whether the user may author articles.
func (u *User) CanCreateArticles() bool {
	return u.HasAnyRole(RoleAdmin, RoleEmployee)
}

// CanPublishArticles reports whether the user may change an article's
// lifecycle status (approve, reject).
func (u *User) CanPublishArticles() bool {
	return u.HasRole(RoleAdmin)
}

// CanManageUsers reports whether the user may list users and change roles.
func (u *User) CanManageUsers() bool {
	return u.HasRole(RoleAdmin)
}

// CanComment reports whether the user may comment. Any authenticated user can.
func (u *User) CanComment() bool {
	return u != nil
}
