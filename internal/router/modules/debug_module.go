package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/egarage-auth/internal/interface/middleware"
)

// DebugModule publishes expvar counters, including the "auth" outcome map.
type DebugModule struct {
	Counter middleware.Counter
}

func NewDebugModule(counter middleware.Counter) *DebugModule { return &DebugModule{Counter: counter} }

func (m *DebugModule) Name() string { return "debug" }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Counter, 120, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
