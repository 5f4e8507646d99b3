package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/campuslife/campushub/internal/domain/auth"
)

// SessionStore persists and retrieves user sessions. Save uses ttl as the
// idle window: a session untouched for that long disappears on its own.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// PasswordHasher turns plaintext passwords into one-way hashes and back-checks them.
// Verify must take the same time for a wrong password as for a right one.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
	// DummyVerify burns the same work as a failed Verify without a real hash.
	// Called on unknown identifiers so login failures are timing-indistinguishable.
	DummyVerify(password string)
}

// Mailer delivers a single HTML message. Implementations must not retry;
// a failed send is logged by the caller and the user may request again.
type Mailer interface {
	Send(ctx context.Context, msg Mail) error
}

// Mail is one outbound message.
type Mail struct {
	To       string
	Subject  string
	HTMLBody string
}
