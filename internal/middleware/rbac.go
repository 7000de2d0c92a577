package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-recommender-api/internal/models"
	appErrors "github.com/noah-isme/timetable-recommender-api/pkg/errors"
	"github.com/noah-isme/timetable-recommender-api/pkg/response"
)

// RequireRoles admits requests whose claims carry any of roles. It must run
// after JWT.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		claims, ok := value.(*models.JWTClaims)
		if !exists || !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		for _, role := range roles {
			if claims.HasRole(role) {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
