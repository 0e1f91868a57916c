package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/skillbazaar/marketplace-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
// Token issuance lives in the identity service; this package only needs
// the shape for minting in tests and tooling.
type AccessTokenPayload struct {
	UserID int64
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT presented by clients.
type AccessTokenClaims struct {
	UserID int64          `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
