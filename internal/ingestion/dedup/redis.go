// Package dedup provides the replay-protection store for webhook deliveries.
// Keys live in redis with a bounded TTL so protection survives process
// restarts and is shared across instances.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store tracks delivery ids that have already been processed.
type Store interface {
	// AlreadyDelivered marks the delivery id as seen and reports whether it
	// had been seen before. The mark-and-check is a single atomic operation.
	AlreadyDelivered(ctx context.Context, deliveryID string) (bool, error)
}

// RedisStore implements Store with SET NX and a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a replay-protection store on the given client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// AlreadyDelivered atomically records the delivery id. SET NX succeeds only
// for the first caller; every later caller within the TTL sees a replay.
func (s *RedisStore) AlreadyDelivered(ctx context.Context, deliveryID string) (bool, error) {
	set, err := s.client.SetNX(ctx, key(deliveryID), 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("replay check failed: %w", err)
	}
	return !set, nil
}

func key(deliveryID string) string {
	return "webhook:delivery:" + deliveryID
}

var _ Store = (*RedisStore)(nil)
