package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/encrypted69-code/upirefer/internal/config"
	"github.com/encrypted69-code/upirefer/internal/logger"
)

func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       0,
	})

	_, err := rdb.Ping(context.Background()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Log.Info("Connected to Redis")
	return rdb, nil
}
