package model

import "time"

// TokenPurpose distinguishes why an auth token was mailed out.
// Verification and password-reset tokens live in the same table but are
// separate records with their own expiry; a token issued for one purpose
// can never be consumed for the other.
type TokenPurpose string

const (
	TokenPurposeVerify TokenPurpose = "verify"
	TokenPurposeReset  TokenPurpose = "reset"
)

// Valid reports whether the token purpose is supported.
func (p TokenPurpose) Valid() bool {
	switch p {
	case TokenPurposeVerify, TokenPurposeReset:
		return true
	default:
		return false
	}
}

// TTL returns how long a freshly issued token of this purpose stays valid.
func (p TokenPurpose) TTL() time.Duration {
	if p == TokenPurposeReset {
		return time.Hour
	}
	return 24 * time.Hour
}

// AuthToken stores the SHA-256 hash of a mailed single-use secret.
// The plaintext token exists only in the email; a leaked table row is not
// enough to complete a verification or reset.
type AuthToken struct {
	ID        int64        `json:"id"         db:"id"`
	UserID    int64        `json:"user_id"    db:"user_id"`
	TokenHash string       `json:"-"          db:"token_hash"`
	Purpose   TokenPurpose `json:"purpose"    db:"purpose"`
	ExpiresAt time.Time    `json:"expires_at" db:"expires_at"`
	UsedAt    *time.Time   `json:"used_at,omitempty" db:"used_at"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// Usable reports whether the token can still be consumed at the given time.
func (t AuthToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
