package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunaetstella/smartstock-backend/pkg/config"
)

func testPasswordConfig() config.PasswordConfig {
	// Small parameters to keep hashing fast in tests.
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerify(t *testing.T) {
	encoded, err := HashPassword("s3cret-pw", testPasswordConfig())
	require.NoError(t, err)
	assert.Contains(t, encoded, "$argon2id$v=19$")

	ok, err := VerifyPassword("s3cret-pw", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong-pw", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashIsSalted(t *testing.T) {
	cfg := testPasswordConfig()

	first, err := HashPassword("same-password", cfg)
	require.NoError(t, err)
	second, err := HashPassword("same-password", cfg)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	_, err := HashPassword("", testPasswordConfig())
	require.Error(t, err)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=8,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8,t=1$c2FsdA",
	} {
		_, err := VerifyPassword("whatever", encoded)
		assert.ErrorIs(t, err, ErrInvalidHash, "hash %q", encoded)
	}
}
