package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lunaetstella/smartstock-backend/pkg/db/models"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   models.Role
}

// AccessTokenClaims represents the typed JWT issued to clients: user id,
// role and the registered expiry claim.
type AccessTokenClaims struct {
	UserID uuid.UUID   `json:"id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}
