package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
	RoleUser      Role = "user"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleOrganizer, RoleUser:
		return true
	default:
		return false
	}
}

// SelfRegisterRole reports whether r may be chosen at self-registration.
// Admin accounts are only created by another admin.
func SelfRegisterRole(r Role) bool {
	return r == RoleUser || r == RoleOrganizer
}

// Level returns the position of r in the role hierarchy (user < organizer < admin).
// Unknown roles return -1 and never satisfy a requirement.
func (r Role) Level() int {
	switch r {
	case RoleUser:
		return 0
	case RoleOrganizer:
		return 1
	case RoleAdmin:
		return 2
	default:
		return -1
	}
}

// Meets reports whether r satisfies the required role.
func (r Role) Meets(required Role) bool {
	rl, ql := r.Level(), required.Level()
	return rl >= 0 && ql >= 0 && rl >= ql
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier carried by the session cookie.
type Session struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	RememberMe bool      `json:"remember_me"`
	CreatedAt  time.Time `json:"created_at"`
	// RotatedAt is when the session identifier was last re-keyed.
	RotatedAt time.Time `json:"rotated_at"`
	// LastSeenAt is bumped on every authenticated request; sessions idle
	// past the configured window are discarded at next access.
	LastSeenAt time.Time `json:"last_seen_at"`
}

// IdleSince reports how long the session has been idle as of now.
func (s Session) IdleSince(now time.Time) time.Duration {
	return now.Sub(s.LastSeenAt)
}

// DisplayName returns the user's full name, falling back to the username.
func (s Session) DisplayName() string {
	switch {
	case s.FirstName != "" && s.LastName != "":
		return s.FirstName + " " + s.LastName
	case s.FirstName != "":
		return s.FirstName
	default:
		return s.Username
	}
}
