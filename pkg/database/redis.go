package database

import (
	"context"
	"fmt"
	"time"

	"mri_screening_backend/internal/config"

	"github.com/go-redis/redis/v8"
)

// InitRedis connects the violation-window counter store. The caller treats a
// failure as non-fatal, so the ping is bounded to keep startup fast when the
// server is absent.
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}
