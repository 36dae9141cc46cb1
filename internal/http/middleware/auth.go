// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication for store-scoped routes.
// Tokens are signed store credentials issued at registration and login; the
// middleware verifies the signature and expiry, then exposes the bound store
// identifier to downstream handlers via the Gin context.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pharmafind/go-pharmacy-backend/internal/auth"
)

// storeIDKey is the Gin context key under which the authenticated store
// identifier is stored.
const storeIDKey = "storeID"

// TokenVerifier validates a compact token and returns the store it binds to.
// *auth.TokenIssuer satisfies it.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// StoreIDFrom returns the authenticated store identifier set by
// RequireStoreToken, or "" when the request is unauthenticated.
func StoreIDFrom(c *gin.Context) string {
	if v, ok := c.Get(storeIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RequireStoreToken returns a Gin middleware that rejects requests lacking a
// valid "Authorization: Bearer <token>" header.
//
// Failure responses use the standard error envelope with a code that lets
// clients distinguish an expired token (re-login) from an invalid one:
//
//	HTTP/1.1 401 Unauthorized
//	{
//	  "request_id": "<uuid>",
//	  "code":       "token_expired",
//	  "message":    "token expired"
//	}
func RequireStoreToken(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
			unauthorized(c, "token_invalid", "missing bearer token")
			return
		}

		storeID, err := verifier.Verify(strings.TrimSpace(header[len(prefix):]))
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				unauthorized(c, "token_expired", "token expired")
				return
			}
			unauthorized(c, "token_invalid", "token invalid")
			return
		}

		c.Set(storeIDKey, storeID)
		c.Next()
	}
}

func unauthorized(c *gin.Context, code, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       code,
		"message":    msg,
	})
}
