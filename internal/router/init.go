package router

import (
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/egarage-auth/config"
	"github.com/oksasatya/egarage-auth/internal/application"
	"github.com/oksasatya/egarage-auth/internal/container"
	"github.com/oksasatya/egarage-auth/internal/infrastructure/elastic"
	pginfra "github.com/oksasatya/egarage-auth/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/egarage-auth/internal/interface/http"
	"github.com/oksasatya/egarage-auth/internal/interface/middleware"
	"github.com/oksasatya/egarage-auth/internal/router/modules"
	"github.com/oksasatya/egarage-auth/pkg/helpers"
)

// Deps is everything the HTTP modules need.
type Deps struct {
	Service *application.Service
	Config  *config.Config
	Logger  logrus.FieldLogger
	JWT     *helpers.JWTManager
	Mail    application.Mailer
	Counter middleware.Counter // nil disables rate limiting
}

// BuildService wires the auth service against Postgres and, when configured,
// Elasticsearch.
func BuildService() *application.Service {
	cfg := container.GetConfig()
	pool := container.GetPGPool()

	var (
		sink    application.ActivitySink = pginfra.NewAuditRepository(pool)
		history application.ActivityReader
	)
	if es := container.GetES(); es != nil {
		idx := elastic.NewActivityIndex(es, cfg.ESActivityIndex)
		sink = application.MultiSink{sink, idx}
		history = idx
	}

	return application.NewService(application.Deps{
		Users:      pginfra.NewUserRepository(pool),
		Tokens:     pginfra.NewResetTokenRepository(pool),
		Roles:      pginfra.NewRoleRepository(pool),
		Providers:  pginfra.NewProviderRepository(pool),
		Transactor: pginfra.NewTransactor(pool),
		Hasher:     helpers.NewPasswordHasher(cfg.BcryptCost),
		JWT:        container.GetJWT(),
		Mail:       container.GetMailer(),
		Activity:   sink,
		History:    history,
		Config:     cfg,
		Logger:     container.GetLogger(),
	})
}

func buildDeps() Deps {
	d := Deps{
		Service: BuildService(),
		Config:  container.GetConfig(),
		Logger:  container.GetLogger(),
		JWT:     container.GetJWT(),
		Mail:    container.GetMailer(),
	}
	if rdb := container.GetRedis(); rdb != nil {
		d.Counter = middleware.NewRedisCounter(rdb)
	}
	return d
}

// InitModules initializes all application modules from the container and
// registers them with the router registry. Call once during startup.
func InitModules(r *Registry) {
	Mount(r, buildDeps())
}

// Mount registers every module built from d.
func Mount(r *Registry, d Deps) {
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(d.Service, d.Config, d.Logger), d.Counter, d.Config.SigninRateLimit, d.Config.ResetRateLimit))
	r.Add(modules.NewAccountModule(handlers.NewAccountHandler(d.Service, d.Logger), d.JWT, d.Counter))
	r.Add(modules.NewEmailModule(handlers.NewEmailHandler(d.Mail, d.Logger, d.Config), d.JWT, d.Counter))
	if d.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(d.Counter))
	}
}
