package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasherWithCost(bcrypt.MinCost)

	hash, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
	assert.NotContains(t, hash, "secret123")

	assert.True(t, h.Verify(hash, "secret123"))
	assert.False(t, h.Verify(hash, "secret124"))
	assert.False(t, h.Verify("not-a-hash", "secret123"))
}

func TestBcryptHasher_DistinctSalts(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasherWithCost(bcrypt.MinCost)

	a, err := h.Hash("secret123")
	require.NoError(t, err)
	b, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNewBcryptHasherWithCost_ClampsOutOfRange(t *testing.T) {
	t.Parallel()
	assert.Equal(t, DefaultCost, NewBcryptHasherWithCost(99).cost)
	assert.Equal(t, DefaultCost, NewBcryptHasherWithCost(-1).cost)
	assert.Equal(t, bcrypt.MinCost, NewBcryptHasherWithCost(bcrypt.MinCost).cost)
}

func TestBcryptHasher_DummyVerifyDoesNotPanic(t *testing.T) {
	t.Parallel()
	NewBcryptHasherWithCost(bcrypt.MinCost).DummyVerify("anything")
}
