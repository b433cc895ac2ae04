package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunaetstella/smartstock-backend/pkg/config"
	"github.com/lunaetstella/smartstock-backend/pkg/db/models"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "smartstock",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParse(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	now := time.Now()

	signed, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: userID, Role: models.RoleAdmin})
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, signed)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "smartstock", claims.Issuer)
	assert.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestMintRejectsInvalidInput(t *testing.T) {
	now := time.Now()
	payload := AccessTokenPayload{UserID: uuid.New(), Role: models.RoleEmployee}

	cfg := testJWTConfig()
	cfg.Secret = ""
	_, err := MintAccessToken(cfg, now, payload)
	require.Error(t, err)

	cfg = testJWTConfig()
	cfg.ExpirationMinutes = 0
	_, err = MintAccessToken(cfg, now, payload)
	require.Error(t, err)

	_, err = MintAccessToken(testJWTConfig(), now, AccessTokenPayload{UserID: uuid.New(), Role: "superuser"})
	require.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	issuedAt := time.Now().Add(-2 * time.Hour)

	signed, err := MintAccessToken(cfg, issuedAt, AccessTokenPayload{UserID: uuid.New(), Role: models.RoleEmployee})
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, signed)
	require.Error(t, err)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: models.RoleEmployee})
	require.NoError(t, err)

	other := cfg
	other.Secret = "different-secret"
	_, err = ParseAccessToken(other, signed)
	require.Error(t, err)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: models.RoleEmployee})
	require.NoError(t, err)

	other := cfg
	other.Issuer = "someone-else"
	_, err = ParseAccessToken(other, signed)
	require.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := ParseAccessToken(testJWTConfig(), "not.a.jwt")
	require.Error(t, err)
}
