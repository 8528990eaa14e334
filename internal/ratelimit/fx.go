package ratelimit

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const loginKeyPrefix = "invoicedesk:login:"

var Module = fx.Module("rate.limit",
	fx.Provide(NewLoginLimiter),
)

// NewLoginLimiter uses a redis token bucket when REDIS_ADDR is set and an
// in-memory window otherwise.
func NewLoginLimiter(lc fx.Lifecycle, cfg config.Config, c clock.Clock, log *zap.Logger) (Limiter, error) {
	log = log.Named("ratelimit")
	if cfg.RedisAddr == "" {
		log.Info("login rate limiting in memory", zap.Int("limit", cfg.LoginRateLimit), zap.Duration("window", cfg.LoginRateWindow))
		return NewWindow(cfg.LoginRateLimit, cfg.LoginRateWindow, c), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis unreachable, login attempts will be refused until it recovers", zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	log.Info("login rate limiting in redis", zap.String("addr", cfg.RedisAddr))
	return NewTokenBucket(client, loginKeyPrefix, cfg.LoginRateLimit, cfg.LoginRateWindow)
}
