package perfcache

import (
	"context"
	"testing"
	"time"

	"prmhub_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewWithClient(rdb, 5*time.Minute, logger.New("development"))
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestCacheSetGet(t *testing.T) {
	cache, _ := newTestCache(t)
	partnerID := uuid.New()

	if _, ok := cache.Get(context.Background(), partnerID); ok {
		t.Fatal("expected miss before set")
	}

	cache.Set(context.Background(), partnerID, 72)
	pct, ok := cache.Get(context.Background(), partnerID)
	if !ok {
		t.Fatal("expected hit after set")
	}
	if pct != 72 {
		t.Fatalf("expected 72, got %d", pct)
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	partnerID := uuid.New()

	cache.Set(context.Background(), partnerID, 50)
	cache.Invalidate(context.Background(), partnerID)

	if _, ok := cache.Get(context.Background(), partnerID); ok {
		t.Fatal("expected miss after invalidate")
	}
}

func TestCacheExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	partnerID := uuid.New()

	cache.Set(context.Background(), partnerID, 50)
	mr.FastForward(6 * time.Minute)

	if _, ok := cache.Get(context.Background(), partnerID); ok {
		t.Fatal("expected miss after TTL")
	}
}

func TestCacheRedisDownDegradesToMiss(t *testing.T) {
	cache, mr := newTestCache(t)
	partnerID := uuid.New()

	mr.Close()
	if _, ok := cache.Get(context.Background(), partnerID); ok {
		t.Fatal("expected miss when redis is unavailable")
	}
	// writes must not panic either
	cache.Set(context.Background(), partnerID, 10)
	cache.Invalidate(context.Background(), partnerID)
}
