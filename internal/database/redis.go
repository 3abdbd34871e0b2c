package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClients fans session events out across server instances. Publishing
// and subscribing use separate connections since a subscribed connection
// cannot issue other commands.
type RedisClients struct {
	Publish *redis.Client
	PubSub  *redis.Client
}

func NewRedisClients(ctx context.Context, redisURL string) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	publishClient := redis.NewClient(opt)
	if err := publishClient.Ping(ctx).Err(); err != nil {
		publishClient.Close()
		return nil, fmt.Errorf("failed to ping Redis (publish): %w", err)
	}

	pubsubOpt := *opt
	pubsubClient := redis.NewClient(&pubsubOpt)
	if err := pubsubClient.Ping(ctx).Err(); err != nil {
		publishClient.Close()
		pubsubClient.Close()
		return nil, fmt.Errorf("failed to ping Redis (pubsub): %w", err)
	}

	return &RedisClients{
		Publish: publishClient,
		PubSub:  pubsubClient,
	}, nil
}

func (r *RedisClients) Close() {
	r.Publish.Close()
	r.PubSub.Close()
}
