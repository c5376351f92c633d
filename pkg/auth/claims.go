package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kaanagas/kaanagas-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
// Issuance lives with the identity service; minting here backs tests
// and local tooling.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Role     enums.UserRole
	VendorID *uuid.UUID
	RiderID  *uuid.UUID
	JTI      string
}

// AccessTokenClaims represents the typed JWT presented by clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID      `json:"user_id"`
	Role     enums.UserRole `json:"role"`
	VendorID *uuid.UUID     `json:"vendor_id,omitempty"`
	RiderID  *uuid.UUID     `json:"rider_id,omitempty"`
	jwt.RegisteredClaims
}
