package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client wraps the go-redis client backing the email job queue.
type Client struct {
	*redis.Client
	logger *zap.Logger
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", addr))
	return &Client{Client: rdb, logger: logger}, nil
}
