package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pageza/recetario/backend/internal/model"
)

// Token purposes. Access tokens authenticate requests; reset tokens only
// authorise a password change.
const (
	PurposeAccess = "access"
	PurposeReset  = "reset"
)

// TokenClaims represents the claims in a JWT token
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID  `json:"user_id"`
	Role      model.Role `json:"role,omitempty"`
	SessionID string     `json:"session_id,omitempty"`
	Purpose   string     `json:"purpose"`
}
