package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/egarage-auth/internal/domain/entity"
	handlers "github.com/oksasatya/egarage-auth/internal/interface/http"
	"github.com/oksasatya/egarage-auth/internal/interface/middleware"
	"github.com/oksasatya/egarage-auth/pkg/helpers"
)

// EmailModule exposes the admin test email endpoint.
type EmailModule struct {
	Handler *handlers.EmailHandler
	JWT     *helpers.JWTManager
	Counter middleware.Counter
}

func NewEmailModule(h *handlers.EmailHandler, jwt *helpers.JWTManager, counter middleware.Counter) *EmailModule {
	return &EmailModule{Handler: h, JWT: jwt, Counter: counter}
}

func (m *EmailModule) Name() string { return "email" }

func (m *EmailModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(
		middleware.JWTAuth(m.JWT),
		middleware.RequireRole(entity.RoleAdmin),
		middleware.RateLimit(m.Counter, 20, time.Minute, keyByUser(), nil),
	)
	admin.POST("/email/test", m.Handler.Send)
}
