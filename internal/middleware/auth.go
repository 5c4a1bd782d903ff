package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"litrecord/internal/auth"
)

// ContextKeySubject holds the authenticated token subject.
const ContextKeySubject = "subject"

// Auth returns Gin middleware that requires a valid bearer token. A nil
// TokenService disables the check.
func Auth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid authorization header"},
			})
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "invalid or expired token"},
			})
			return
		}

		c.Set(ContextKeySubject, claims.Subject)
		c.Next()
	}
}

// GetSubject extracts the token subject from the Gin context.
func GetSubject(c *gin.Context) string {
	val, exists := c.Get(ContextKeySubject)
	if !exists {
		return ""
	}
	return val.(string)
}
