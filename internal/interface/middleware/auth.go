package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/egarage-auth/pkg/response"
)

// RequireRole lets the request through only when JWTAuth stored one of roles.
// It must run after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserIDKey) == "" {
			response.Error(c, http.StatusUnauthorized, "missing access token", response.ErrorBody{Code: "unauthenticated"})
			return
		}
		have := c.GetString(CtxUserRoleKey)
		for _, r := range roles {
			if strings.EqualFold(have, r) {
				c.Next()
				return
			}
		}
		response.Error(c, http.StatusForbidden, "insufficient role", response.ErrorBody{Code: "forbidden"})
	}
}
