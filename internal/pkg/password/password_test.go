package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHash(t *testing.T) {
	t.Run("encodes argon2id parameters", func(t *testing.T) {
		hash, err := Hash("s3cret-pass")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=4$"))
		assert.Len(t, strings.Split(hash, "$"), 6)
	})

	t.Run("same password gets different salts", func(t *testing.T) {
		h1, err := Hash("same")
		require.NoError(t, err)
		h2, err := Hash("same")
		require.NoError(t, err)

		assert.NotEqual(t, h1, h2)
	})
}

func TestVerify(t *testing.T) {
	hash, err := Hash("correct horse")
	require.NoError(t, err)

	t.Run("matching password", func(t *testing.T) {
		assert.NoError(t, Verify(hash, "correct horse"))
	})

	t.Run("wrong password", func(t *testing.T) {
		assert.ErrorIs(t, Verify(hash, "battery staple"), ErrMismatch)
	})

	t.Run("empty password", func(t *testing.T) {
		assert.ErrorIs(t, Verify(hash, ""), ErrMismatch)
	})

	t.Run("plaintext stored value is rejected", func(t *testing.T) {
		assert.ErrorIs(t, Verify("correct horse", "correct horse"), ErrInvalidFormat)
	})

	t.Run("corrupted salt", func(t *testing.T) {
		parts := strings.Split(hash, "$")
		parts[4] = "!!!"
		assert.ErrorIs(t, Verify(strings.Join(parts, "$"), "correct horse"), ErrInvalidFormat)
	})

	t.Run("wrong version", func(t *testing.T) {
		bad := strings.Replace(hash, "v=19", "v=16", 1)
		assert.ErrorIs(t, Verify(bad, "correct horse"), ErrInvalidFormat)
	})
}

func TestVerify_Bcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("imported"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, Verify(string(legacy), "imported"))
	assert.ErrorIs(t, Verify(string(legacy), "other"), ErrMismatch)
}
