package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewRedis connects to REDIS_URL. Redis often starts after the app under
// compose, so the ping is retried with backoff for up to ~15s or until ctx
// is done.
func NewRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	rdb := redis.NewClient(opts)

	espera := 250 * time.Millisecond
	for intento := 1; ; intento++ {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = rdb.Ping(pctx).Err()
		cancel()
		if err == nil {
			return rdb, nil
		}
		if intento == 5 {
			break
		}
		log.Warn().Err(err).Str("component", "redis").Int("intento", intento).Msg("redis no responde, reintentando")
		select {
		case <-ctx.Done():
			_ = rdb.Close()
			return nil, ctx.Err()
		case <-time.After(espera):
		}
		espera *= 2
	}
	_ = rdb.Close()
	return nil, fmt.Errorf("redis: %w", err)
}
