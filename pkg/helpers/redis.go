package helpers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/egarage-auth/config"
)

// NewRedisClient builds the rate-limit client from cfg and pings it once.
// The client is returned even when the ping fails; the limiter fails open and
// go-redis reconnects on its own.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return rdb, rdb.Ping(pingCtx).Err()
}
