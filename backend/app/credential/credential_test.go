package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcrypt(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	hash, err := h.Hash("secretpassword")
	require.NoError(t, err)
	assert.NotEqual(t, "secretpassword", hash)

	assert.NoError(t, h.Verify(hash, "secretpassword"))
	assert.ErrorIs(t, h.Verify(hash, "wrongpassword"), ErrMismatch)
	assert.Error(t, h.Verify("not-a-hash", "secretpassword"))
}

func TestNewBcryptClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(99).Cost)
	assert.Equal(t, bcrypt.MinCost, NewBcrypt(bcrypt.MinCost).Cost)
}
