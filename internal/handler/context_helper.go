package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-registry-api/internal/middleware"
	"github.com/noah-isme/school-registry-api/internal/models"
)

// currentClaims extracts the authenticated claims from the gin context.
func currentClaims(c *gin.Context) (*models.TokenClaims, bool) {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*models.TokenClaims)
	return claims, ok
}

// pageParams reads the common page/limit query parameters.
func pageParams(c *gin.Context) (int, int) {
	page := 1
	limit := 10
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil {
		limit = v
	}
	return page, limit
}
