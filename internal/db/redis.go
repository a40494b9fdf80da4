package db

import (
	"context"
	"time"

	"taskboard/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil when addr is empty or the server does not answer,
// so callers can fall back to in-process rate limiting
func ConnectRedis(ctx context.Context, addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, using in-process rate limits", "addr", addr, "error", err)
		_ = rdb.Close()
		return nil
	}

	logger.Info("redis connected", "addr", addr)
	return rdb
}

// RedisPinger adapts a redis client to the health check Pinger
type RedisPinger struct {
	Client *redis.Client
}

func (p RedisPinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}
