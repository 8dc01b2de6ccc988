package counter

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var _ Counter = (*RedisCounter)(nil)

// RedisCounter relies on INCRBY being atomic on the server, so it stays
// correct when several processes share the key.
type RedisCounter struct {
	key    string
	client redis.UniversalClient
}

func NewRedisCounter(client redis.UniversalClient, key string) *RedisCounter {
	return &RedisCounter{key: key, client: client}
}

func (c *RedisCounter) Get(ctx context.Context) (int64, error) {
	s, err := c.client.Get(ctx, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis.Get: %w", err)
	}
	return parseValue(s)
}

func (c *RedisCounter) Up(ctx context.Context) (int64, error) {
	v, err := c.client.IncrBy(ctx, c.key, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("redis.IncrBy: %w", err)
	}
	return v, nil
}
