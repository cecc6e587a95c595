package redisinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/email-login-otp/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client from configuration and checks connectivity.
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	return client, nil
}

func key(prefix, kind, identity string) string {
	return fmt.Sprintf("%s:%s:%s", prefix, kind, identity)
}
