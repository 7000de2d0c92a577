package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-recommender-api/internal/middleware"
	"github.com/noah-isme/timetable-recommender-api/internal/models"
	appErrors "github.com/noah-isme/timetable-recommender-api/pkg/errors"
	"github.com/noah-isme/timetable-recommender-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// requireStudent writes a 401 and returns nil when the request carries no
// student claims.
func requireStudent(c *gin.Context) *models.JWTClaims {
	claims := claimsFromContext(c)
	if claims == nil || claims.StudentID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil
	}
	return claims
}
