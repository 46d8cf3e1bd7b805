package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options tune the client beyond what the URL carries.
type Options struct {
	URL         string
	DialTimeout time.Duration
	// OpTimeout bounds reads and writes so a slow cache never stalls a report.
	OpTimeout time.Duration
}

// NewClient creates a new Redis client.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	return NewClientWithOptions(ctx, Options{URL: redisURL})
}

// NewClientWithOptions creates a client and verifies it with a ping.
func NewClientWithOptions(ctx context.Context, o Options) (*redis.Client, error) {
	opts, err := redis.ParseURL(o.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	if o.DialTimeout > 0 {
		opts.DialTimeout = o.DialTimeout
	}
	if o.OpTimeout > 0 {
		opts.ReadTimeout = o.OpTimeout
		opts.WriteTimeout = o.OpTimeout
	}

	client := redis.NewClient(opts)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// Pinger adapts a client to a readiness check.
func Pinger(client *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
