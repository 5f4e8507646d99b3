package password

// Package password implements the ports.PasswordHasher contract on bcrypt.

import "golang.org/x/crypto/bcrypt"

// DefaultCost is the bcrypt work factor. 12 keeps a single verification in
// the low hundreds of milliseconds on current hardware.
const DefaultCost = 12

// dummyHash is a valid bcrypt hash of an unguessable throwaway value.
// DummyVerify compares against it so the "no such user" path costs the
// same as a real failed password check.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// BcryptHasher hashes and verifies passwords with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the default cost.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: DefaultCost}
}

// NewBcryptHasherWithCost creates a hasher with a custom cost (tests use the minimum).
func NewBcryptHasherWithCost(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt hash of password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify reports whether password matches hash.
func (h *BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// DummyVerify performs a comparison against a fixed hash and discards the result.
func (h *BcryptHasher) DummyVerify(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
