package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClients: Events carries the video-update pub/sub traffic on its own
// connection so the rate limiter's commands never sit behind a subscription.
type RedisClients struct {
	Limiter *redis.Client
	Events  *redis.Client
}

func NewRedisClients(redisURL string) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	limiter := redis.NewClient(opt)
	if err := limiter.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis (limiter): %w", err)
	}

	eventsOpt := *opt
	events := redis.NewClient(&eventsOpt)
	if err := events.Ping(ctx).Err(); err != nil {
		limiter.Close()
		return nil, fmt.Errorf("failed to ping Redis (events): %w", err)
	}

	return &RedisClients{Limiter: limiter, Events: events}, nil
}

func (r *RedisClients) Close() {
	r.Limiter.Close()
	r.Events.Close()
}
