// README: Firebase bearer-token auth middleware.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"routemind/internal/infra"
)

const (
	ctxKeyUID   = "auth_uid"
	ctxKeyEmail = "auth_email"
)

// Auth verifies the Authorization bearer token with Firebase and stores
// the caller identity on the request context. A nil verifier disables
// auth entirely (local development without Firebase credentials).
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed authorization header"})
			return
		}
		token, err := verifier.VerifyIDToken(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxKeyUID, token.UID)
		c.Set(ctxKeyEmail, token.Email)
		c.Next()
	}
}

// CallerUID returns the verified Firebase UID, or "" when auth is disabled.
func CallerUID(c *gin.Context) string {
	return c.GetString(ctxKeyUID)
}

// CallerEmail returns the verified email claim, or "" when absent.
func CallerEmail(c *gin.Context) string {
	return c.GetString(ctxKeyEmail)
}
