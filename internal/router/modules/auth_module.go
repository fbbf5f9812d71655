package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/egarage-auth/internal/interface/http"
	"github.com/oksasatya/egarage-auth/internal/interface/middleware"
)

// AuthModule registers the public auth endpoints.
// POST /api/auth/{signup,signin,admin/signin,provider/signin,logout}
// POST /api/auth/{request-password-reset,verify-reset-token,reset-password,verify-email}
type AuthModule struct {
	Handler     *handlers.AuthHandler
	Counter     middleware.Counter
	SigninLimit int
	ResetLimit  int
}

func NewAuthModule(h *handlers.AuthHandler, counter middleware.Counter, signinLimit, resetLimit int) *AuthModule {
	return &AuthModule{Handler: h, Counter: counter, SigninLimit: signinLimit, ResetLimit: resetLimit}
}

func (m *AuthModule) Name() string { return "auth" }

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signinLimiter := middleware.RateLimit(m.Counter, m.SigninLimit, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(m.Counter, m.ResetLimit, time.Minute, middleware.KeyByIPAndPath(), nil)
	tokenLimiter := middleware.RateLimit(m.Counter, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	auth := rg.Group("/auth")
	auth.POST("/signup", signinLimiter, m.Handler.Signup)
	auth.POST("/signin", signinLimiter, m.Handler.Signin)
	auth.POST("/admin/signin", signinLimiter, m.Handler.AdminSignin)
	auth.POST("/provider/signin", signinLimiter, m.Handler.ProviderSignin)
	auth.POST("/logout", m.Handler.Logout)

	auth.POST("/request-password-reset", resetLimiter, m.Handler.RequestPasswordReset)
	auth.POST("/verify-reset-token", tokenLimiter, m.Handler.VerifyResetToken)
	auth.POST("/reset-password", tokenLimiter, m.Handler.ResetPassword)
	auth.POST("/verify-email", tokenLimiter, m.Handler.VerifyEmail)
}
