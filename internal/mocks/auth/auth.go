package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/campuslife/campushub/internal/domain/auth"
	"github.com/campuslife/campushub/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionStore   = (*MemorySessionStore)(nil)
	_ ports.PasswordHasher = (*PlainHasher)(nil)
	_ ports.Mailer         = (*RecordingMailer)(nil)
)

// ErrNotFound is returned by mocks when an entity is not present.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}

// MemorySessionStore is an in-memory session store for unit tests. It keeps
// the TTL passed at save time so tests can assert on the sliding window.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
	ttls     map[string]time.Duration

	SaveErr   error // when set, Save returns this error
	GetErr    error // when set, Get returns this error
	DeleteErr error // when set, Delete returns this error
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
		ttls:     make(map[string]time.Duration),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session, ttl time.Duration) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	m.ttls[sess.ID] = ttl
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if m.GetErr != nil {
		return domainauth.Session{}, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.ttls, id)
	return nil
}

// Len reports how many sessions are stored.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// TTLFor returns the TTL recorded at the last Save for the given session.
func (m *MemorySessionStore) TTLFor(id string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[id]
}

// PlainHasher is a deterministic, instant stand-in for the bcrypt hasher.
// It records whether the dummy path ran, which timing-equalization tests
// assert on.
type PlainHasher struct {
	mu               sync.Mutex
	dummyVerifyCalls int
}

// NewPlainHasher creates a PlainHasher.
func NewPlainHasher() *PlainHasher { return &PlainHasher{} }

func (h *PlainHasher) Hash(password string) (string, error) {
	return "plain:" + password, nil
}

func (h *PlainHasher) Verify(hash, password string) bool {
	return hash == "plain:"+password
}

func (h *PlainHasher) DummyVerify(string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dummyVerifyCalls++
}

// DummyVerifyCalls reports how many times the dummy comparison ran.
func (h *PlainHasher) DummyVerifyCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dummyVerifyCalls
}

// RecordingMailer captures outbound mail instead of sending it.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []ports.Mail

	SendErr error // when set, Send returns this error
}

// NewRecordingMailer creates a RecordingMailer.
func NewRecordingMailer() *RecordingMailer { return &RecordingMailer{} }

func (m *RecordingMailer) Send(_ context.Context, msg ports.Mail) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the captured messages.
func (m *RecordingMailer) Sent() []ports.Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.Mail, len(m.sent))
	copy(out, m.sent)
	return out
}
