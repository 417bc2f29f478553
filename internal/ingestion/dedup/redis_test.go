package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestAlreadyDelivered_FirstDeliveryPasses(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	replayed, err := store.AlreadyDelivered(context.Background(), "delivery-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if replayed {
		t.Fatalf("first delivery must not be a replay")
	}
}

func TestAlreadyDelivered_SecondDeliveryIsReplay(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	if _, err := store.AlreadyDelivered(ctx, "delivery-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	replayed, err := store.AlreadyDelivered(ctx, "delivery-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !replayed {
		t.Fatalf("second delivery of the same id must be a replay")
	}
}

func TestAlreadyDelivered_DistinctIDsIndependent(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	if _, err := store.AlreadyDelivered(ctx, "delivery-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	replayed, err := store.AlreadyDelivered(ctx, "delivery-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if replayed {
		t.Fatalf("a different delivery id must not be a replay")
	}
}

func TestAlreadyDelivered_ExpiresAfterTTL(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	if _, err := store.AlreadyDelivered(ctx, "delivery-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	replayed, err := store.AlreadyDelivered(ctx, "delivery-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if replayed {
		t.Fatalf("delivery id must be forgotten after the TTL")
	}
}
