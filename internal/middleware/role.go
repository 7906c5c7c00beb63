package middleware

import (
	"net/http"

	"hrdesk/internal/domain"
	"hrdesk/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireRole ensures that the authenticated user holds one of the given roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			return
		}

		current := domain.Role(role.(string))
		for _, r := range roles {
			if current == r {
				c.Next()
				return
			}
		}

		response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
	}
}

// ReviewerOnly allows admins and leaders.
func ReviewerOnly() gin.HandlerFunc {
	return RequireRole(domain.ReviewerRoles...)
}
