// middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"prepbook/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuthMiddleware.
const (
	SubjectKey = "subjectID"
	RoleKey    = "role"
)

// JWTAuthMiddleware authenticates the bearer token issued by the identity service and stores its subject and role.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ExtractClaims(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// Subject returns the authenticated subject id.
func Subject(c *gin.Context) string {
	return c.GetString(SubjectKey)
}

// Role returns the authenticated role.
func Role(c *gin.Context) string {
	return c.GetString(RoleKey)
}
