package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recetario/backend/internal/apperr"
	"github.com/pageza/recetario/backend/internal/session"
	"github.com/pageza/recetario/backend/internal/types"
)

const sessionKey = "session"

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// AuthMiddleware validates the bearer token and attaches the caller's
// session, whose like ledger comes from the registry.
func AuthMiddleware(validator TokenValidator, registry session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			Abort(c, apperr.ErrUnauthenticated)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			Abort(c, apperr.ErrUnauthenticated)
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			Abort(c, err)
			return
		}

		c.Set(sessionKey, session.New(claims.SessionID, claims.UserID, claims.Role, registry.Ledger(claims.SessionID)))
		c.Next()
	}
}

// Session returns the caller's session, or an anonymous one when the
// request went through no AuthMiddleware.
func Session(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return session.Anonymous()
}
