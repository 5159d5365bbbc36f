package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis opens the go-redis client that backs the issuance and email
// job queues. Connectivity is verified at startup: a backend that cannot
// enqueue facturación jobs should not come up at all.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
