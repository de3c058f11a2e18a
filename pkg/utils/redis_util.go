package utils

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

func InitializeRedis(ctx context.Context, address, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", address, err)
	}
	return rdb, nil
}
