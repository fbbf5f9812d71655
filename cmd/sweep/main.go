package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/egarage-auth/config"
	"github.com/oksasatya/egarage-auth/internal/application"
	pginfra "github.com/oksasatya/egarage-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/egarage-auth/pkg/helpers"
)

// sweep deletes expired reset and verification tokens. Run it from cron.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg, "sweep")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	svc := application.NewService(application.Deps{
		Tokens: pginfra.NewResetTokenRepository(pool),
		Config: cfg,
		Logger: logger,
	})
	n, err := svc.SweepExpiredTokens(ctx)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}
	helpers.LogInfo(logger, "expired tokens deleted", logrus.Fields{"count": n})
}
