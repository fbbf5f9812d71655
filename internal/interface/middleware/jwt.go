package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/egarage-auth/pkg/helpers"
	"github.com/oksasatya/egarage-auth/pkg/response"
)

// Gin context keys set by JWTAuth.
const (
	CtxUserIDKey    = "userID"
	CtxUserEmailKey = "userEmail"
	CtxUserRoleKey  = "userRole"
)

// bearerToken prefers the Authorization header and falls back to the
// access_token cookie.
func bearerToken(c *gin.Context) string {
	if h := strings.TrimSpace(c.GetHeader("Authorization")); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}
	tok, err := c.Cookie(helpers.AccessCookieName)
	if err != nil {
		return ""
	}
	return tok
}

// JWTAuth validates the access token and injects the caller into the context.
func JWTAuth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing access token", response.ErrorBody{Code: "unauthenticated"})
			return
		}
		claims, err := jwt.DecodeAccess(token)
		if err != nil {
			code := "invalid_token"
			if errors.Is(err, helpers.ErrTokenExpired) {
				code = "token_expired"
			}
			response.Error(c, http.StatusUnauthorized, "invalid access token", response.ErrorBody{Code: code})
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUserEmailKey, claims.Email)
		c.Set(CtxUserRoleKey, claims.Role)
		c.Next()
	}
}
