package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/egarage-auth/config"
	"github.com/oksasatya/egarage-auth/internal/application"
	"github.com/oksasatya/egarage-auth/internal/container"
	pginfra "github.com/oksasatya/egarage-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/egarage-auth/internal/interface/middleware"
	"github.com/oksasatya/egarage-auth/internal/router"
	"github.com/oksasatya/egarage-auth/pkg/helpers"
	"github.com/oksasatya/egarage-auth/pkg/mailer"
	mailtpl "github.com/oksasatya/egarage-auth/pkg/mailer/templates"
	"github.com/oksasatya/egarage-auth/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg, "api")
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	// Redis backs the rate limiter only; it fails open when unreachable.
	rdb, err := helpers.NewRedisClient(ctx, cfg)
	if err != nil {
		helpers.LogError(logger, "redis unreachable, rate limits disabled until it recovers", err, logrus.Fields{"addr": cfg.RedisAddr})
	}
	defer func() { _ = rdb.Close() }()

	// Elasticsearch mirrors the audit log and serves /auth/activity.
	if es, err := helpers.NewESClient(cfg); err != nil {
		helpers.LogError(logger, "elasticsearch disabled", err, nil)
	} else if es != nil {
		container.SetES(es)
	}

	mail, closeMail, err := buildMailer(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to init mailer: %v", err)
	}
	defer closeMail()

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetRedis(rdb)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.AccessTTL))
	container.SetMailer(mail)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP(cfg.TrustedProxyCIDRs()...))
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = []string{"http://localhost:5173"}
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()
	helpers.LogInfo(logger, "modules mounted", logrus.Fields{"modules": reg.Names()})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// buildMailer queues jobs on RabbitMQ when reachable and otherwise sends
// in-process.
func buildMailer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (application.Mailer, func(), error) {
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err == nil {
			helpers.LogInfo(logger, "email jobs go to rabbitmq", logrus.Fields{"queue": cfg.RabbitMQEmailQueue})
			return mailer.NewQueueDispatcher(pub, cfg.MailEnqueueTimeout), pub.Close, nil
		}
		helpers.LogError(logger, "rabbitmq unavailable, sending emails in-process", err, nil)
	}
	sender, closeSender, err := mailer.NewSender(ctx, cfg, logger)
	if err != nil {
		return nil, func() {}, err
	}
	w := &mailer.Worker{Sender: sender, Resolver: mailtpl.NewCachingResolver(mailtpl.IPAPIResolver{}, time.Hour), Logger: logger, SendTimeout: 15 * time.Second}
	return mailer.NewDirectDispatcher(w, cfg.MailEnqueueTimeout), closeSender, nil
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
