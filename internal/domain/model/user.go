//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"time"

	"github.com/campuslife/campushub/internal/domain/auth"
)

// UserStatus controls whether an account may authenticate.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// Valid reports whether the user status is supported.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusSuspended:
		return true
	default:
		return false
	}
}

// User represents an account row. PasswordHash never appears in JSON output;
// only the auth service and the user repository ever touch it.
type User struct {
	ID            int64      `json:"id"             db:"id"`
	Username      string     `json:"username"       db:"username"`
	Email         string     `json:"email"          db:"email"`
	PasswordHash  string     `json:"-"              db:"password_hash"`
	FirstName     string     `json:"first_name"     db:"first_name"`
	LastName      string     `json:"last_name"      db:"last_name"`
	Department    string     `json:"department"     db:"department"`
	Phone         string     `json:"phone"          db:"phone"`
	Role          auth.Role  `json:"role"           db:"role"`
	Status        UserStatus `json:"status"         db:"status"`
	EmailVerified bool       `json:"email_verified" db:"email_verified"`
	LastSeenAt    *time.Time `json:"last_seen_at,omitempty" db:"last_seen_at"`
	CreatedAt     time.Time  `json:"created_at"     db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"     db:"updated_at"`
}

// DisplayName returns the user's full name, falling back to the username.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// CreateUserParams represents the row inserted at registration.
// Validation of the raw registration input happens in the service layer;
// by the time this struct exists the password is already hashed.
type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Department   string
	Phone        string
	Role         auth.Role
}

// UpdateProfileParams represents a partial profile update. Nil fields are
// left untouched; only allow-listed columns appear here.
type UpdateProfileParams struct {
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Department *string `json:"department,omitempty"`
	Phone      *string `json:"phone,omitempty"`
}

// Empty reports whether no field is set.
func (p UpdateProfileParams) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.Department == nil && p.Phone == nil
}

// UsersListOptions controls paging and filtering for the admin user search.
// Q matches username, email, first and last name via ILIKE substring.
type UsersListOptions struct {
	Limit  int
	Offset int
	Q      *string
	Role   *auth.Role
}
