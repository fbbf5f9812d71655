package router

import "github.com/gin-gonic/gin"

// Module is a feature slice that mounts its routes under /api.
type Module interface {
	Name() string
	Register(rg *gin.RouterGroup)
}

// Registry collects modules and the middleware shared by every /api route.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
	mounted     bool
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

// Add queues mod; a module whose name is already queued is ignored.
func (r *Registry) Add(mod Module) {
	if mod == nil {
		return
	}
	for _, m := range r.modules {
		if m.Name() == mod.Name() {
			return
		}
	}
	r.modules = append(r.modules, mod)
}

// Names lists queued modules in registration order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m.Name())
	}
	return out
}

// RegisterAll mounts the middleware and every module. gin panics on duplicate
// routes, so only the first call does anything.
func (r *Registry) RegisterAll() {
	if r.mounted {
		return
	}
	r.mounted = true
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
