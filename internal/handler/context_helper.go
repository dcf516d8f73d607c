package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-progress-api/internal/dto"
	"github.com/noah-isme/course-progress-api/internal/middleware"
	"github.com/noah-isme/course-progress-api/internal/models"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
	"github.com/noah-isme/course-progress-api/pkg/response"
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

// requireClaims writes 401 and returns nil when the request carries no session.
func requireClaims(c *gin.Context) *models.JWTClaims {
	claims := claimsFromContext(c)
	if claims == nil || claims.Identity() == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil
	}
	return claims
}

// sessionKey scopes request tracking to one login session.
func sessionKey(claims *models.JWTClaims) string {
	if claims.SessionID != "" {
		return claims.SessionID
	}
	return claims.Identity()
}

func bindFilter(c *gin.Context) (models.FilterContext, bool) {
	var query dto.FilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid filter"))
		return models.FilterContext{}, false
	}
	return query.Context(), true
}

// respond writes data with cache and filter metadata.
func respond(c *gin.Context, data interface{}, cacheHit bool, filter *models.FilterContext, pagination *response.Pagination) {
	middleware.SetCacheHit(c, cacheHit)
	if filter != nil {
		middleware.SetFilter(c, *filter)
	}
	response.JSON(c, http.StatusOK, data, pagination, middleware.ExtractMeta(c))
}
