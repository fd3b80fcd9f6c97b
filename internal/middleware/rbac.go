package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/orgcms-api/internal/models"
	appErrors "github.com/noah-isme/orgcms-api/pkg/errors"
	"github.com/noah-isme/orgcms-api/pkg/response"
)

// RequireRoles lets through only callers whose role is listed. Must run after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
		c.Next()
	}
}
