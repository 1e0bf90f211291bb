package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/novaderm/clinic-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   int64
	FullName string
	Role     enums.UserRole
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID   int64          `json:"user_id"`
	FullName string         `json:"full_name,omitempty"`
	Role     enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
