package middleware

import (
	"prepbook/models"

	"github.com/gin-gonic/gin"
)

// JWTAuthAdminMiddleware authenticates the caller and requires the admin role.
func JWTAuthAdminMiddleware() []gin.HandlerFunc {
	return []gin.HandlerFunc{JWTAuthMiddleware(), RequireRole(models.RoleAdmin)}
}
