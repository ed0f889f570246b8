package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyavocado/avocado-server/internal/config"
)

var testArgon2Params = config.Argon2Config{Time: 1, MemoryKB: 1024, Threads: 1}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestArgon2Hasher_HashFormat(t *testing.T) {
	h := NewArgon2Hasher(testArgon2Params)

	digest, err := h.Hash("Str0ng!Pass", "secret-one")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=1024,t=1,p=1$"), digest)
	assert.Len(t, strings.Split(digest, "$"), 6)
	assert.NotContains(t, digest, "Str0ng!Pass")
}

func TestArgon2Hasher_Verify(t *testing.T) {
	h := NewArgon2Hasher(testArgon2Params)
	digest, err := h.Hash("Str0ng!Pass", "secret-one")
	require.NoError(t, err)

	t.Run("RoundTrip", func(t *testing.T) {
		ok, err := h.Verify(digest, "Str0ng!Pass", "secret-one")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		ok, err := h.Verify(digest, "wrong", "secret-one")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		ok, err := h.Verify(digest, "Str0ng!Pass", "secret-two")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("DifferentParamsStillVerify", func(t *testing.T) {
		other := NewArgon2Hasher(config.Argon2Config{Time: 2, MemoryKB: 2048, Threads: 2})
		ok, err := other.Verify(digest, "Str0ng!Pass", "secret-one")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestArgon2Hasher_SaltedAndKeyed(t *testing.T) {
	h := NewArgon2Hasher(testArgon2Params)

	first, err := h.Hash("Str0ng!Pass", "secret-one")
	require.NoError(t, err)
	second, err := h.Hash("Str0ng!Pass", "secret-one")
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "random salt must differ between hashes")

	// Same salt, different secret: only the key differs.
	h.rand = strings.NewReader(strings.Repeat("s", 32))
	keyedOne, err := h.Hash("Str0ng!Pass", "secret-one")
	require.NoError(t, err)
	h.rand = strings.NewReader(strings.Repeat("s", 32))
	keyedTwo, err := h.Hash("Str0ng!Pass", "secret-two")
	require.NoError(t, err)
	assert.NotEqual(t, keyedOne, keyedTwo)
}

func TestArgon2Hasher_RandomFailure(t *testing.T) {
	h := NewArgon2Hasher(testArgon2Params)
	h.rand = failingReader{}

	_, err := h.Hash("Str0ng!Pass", "secret-one")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHash)
}

func TestArgon2Hasher_MalformedDigest(t *testing.T) {
	h := NewArgon2Hasher(testArgon2Params)

	tests := []struct {
		name   string
		digest string
		target error
	}{
		{"Empty", "", ErrInvalidDigest},
		{"NotPHC", "plain-text", ErrInvalidDigest},
		{"WrongAlgorithm", "$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA", ErrInvalidDigest},
		{"BadVersionField", "$argon2id$version$m=1024,t=1,p=1$c2FsdA$aGFzaA", ErrInvalidDigest},
		{"OldVersion", "$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$aGFzaA", ErrIncompatibleVersion},
		{"BadParams", "$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA", ErrInvalidDigest},
		{"ZeroThreads", "$argon2id$v=19$m=1024,t=1,p=0$c2FsdA$aGFzaA", ErrInvalidDigest},
		{"BadSalt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA", ErrInvalidDigest},
		{"EmptyHash", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$", ErrInvalidDigest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify(tt.digest, "Str0ng!Pass", "secret-one")
			require.Error(t, err)
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrHash)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}
