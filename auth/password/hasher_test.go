package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHashAndVerify(t *testing.T) {
	h := NewBcryptHasher(WithCost(4))

	hash1, err := h.Hash("pw123")
	require.NoError(t, err)
	hash2, err := h.Hash("pw123")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2, "salts must differ")
	assert.True(t, h.Verify("pw123", hash1))
	assert.True(t, h.Verify("pw123", hash2))
	assert.False(t, h.Verify("other", hash1))
}

func TestBcryptVerifyMalformedHashIsFalse(t *testing.T) {
	h := NewBcryptHasher(WithCost(4))
	assert.False(t, h.Verify("pw123", "not-a-hash"))
	assert.False(t, h.Verify("pw123", ""))
}

func TestBcryptHashRejectsEmptyAndOversized(t *testing.T) {
	h := NewBcryptHasher(WithCost(4))

	_, err := h.Hash("")
	assert.Error(t, err)

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	_, err = h.Hash(string(long))
	assert.Error(t, err)
}

func TestArgon2HashAndVerify(t *testing.T) {
	h := NewArgon2Hasher()

	hash, err := h.Hash("pw123")
	require.NoError(t, err)
	assert.True(t, h.Verify("pw123", hash))
	assert.False(t, h.Verify("other", hash))
	assert.False(t, h.Verify("pw123", "$argon2id$broken"))
}

func TestNewSelectsAlgorithm(t *testing.T) {
	h, err := New(Config{Algorithm: AlgorithmArgon2id})
	require.NoError(t, err)
	_, ok := h.(*Argon2Hasher)
	assert.True(t, ok)

	h, err = New(Config{})
	require.NoError(t, err)
	_, ok = h.(*BcryptHasher)
	assert.True(t, ok)

	_, err = New(Config{Algorithm: "rot13"})
	assert.Error(t, err)
}
