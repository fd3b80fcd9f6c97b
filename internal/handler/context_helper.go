package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/orgcms-api/internal/middleware"
	"github.com/noah-isme/orgcms-api/internal/models"
	"github.com/noah-isme/orgcms-api/internal/service"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return val
}

// listQuery reads the shared listing parameters. An absent or malformed limit keeps the collection default.
func listQuery(c *gin.Context) service.ListQuery {
	q := service.ListQuery{
		Category: c.Query("category"),
		Type:     c.Query("type"),
		Tag:      c.Query("tag"),
		Page:     queryInt(c, "page", 1),
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			q.Limit = &limit
		}
	}
	return q
}

func activityFilter(c *gin.Context) models.ActivityLogFilter {
	return models.ActivityLogFilter{
		Action:     c.Query("action"),
		Collection: c.Query("collection"),
		UserID:     c.Query("user"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "limit", 20),
	}
}
