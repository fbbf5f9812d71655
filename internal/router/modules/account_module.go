package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/egarage-auth/internal/interface/http"
	"github.com/oksasatya/egarage-auth/internal/interface/middleware"
	"github.com/oksasatya/egarage-auth/pkg/helpers"
)

// AccountModule registers endpoints that need a bearer token.
type AccountModule struct {
	Handler *handlers.AccountHandler
	JWT     *helpers.JWTManager
	Counter middleware.Counter
}

func NewAccountModule(h *handlers.AccountHandler, jwt *helpers.JWTManager, counter middleware.Counter) *AccountModule {
	return &AccountModule{Handler: h, JWT: jwt, Counter: counter}
}

func (m *AccountModule) Name() string { return "account" }

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.Use(middleware.JWTAuth(m.JWT))
	{
		auth.GET("/me", m.Handler.Me)
		auth.GET("/activity", m.Handler.Activity)
		auth.POST("/password/change", middleware.RateLimit(m.Counter, 10, time.Minute, keyByUser(), nil), m.Handler.ChangePassword)
		auth.POST("/verify/init", middleware.RateLimit(m.Counter, 5, time.Minute, keyByUser(), nil), m.Handler.VerifyInit)
		auth.POST("/verify/code", middleware.RateLimit(m.Counter, 10, time.Minute, keyByUser(), nil), m.Handler.VerifyCode)
	}
}

func keyByUser() middleware.KeyFunc {
	return func(c *gin.Context) string {
		return "rl:user:" + c.GetString(middleware.CtxUserIDKey) + ":" + c.FullPath()
	}
}
