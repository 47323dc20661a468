package middleware

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore connects to a local Redis or skips the test.
func redisStore(t *testing.T) (*RedisRateLimitStore, *redis.Client) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skip("Redis not available, skipping integration test")
	}
	t.Cleanup(func() { client.Close() })

	return NewRedisRateLimitStore(client), client
}

func uniqueKey(t *testing.T) string {
	return fmt.Sprintf("ratelimit-test:%s:%d", t.Name(), time.Now().UnixNano())
}

func TestRedisRateLimitStore_Allow(t *testing.T) {
	store, client := redisStore(t)
	config := RateLimitConfig{RequestsPerWindow: 5, WindowDuration: time.Minute}

	key := uniqueKey(t)
	ctx := context.Background()
	defer client.Del(ctx, key)

	for i := 0; i < 5; i++ {
		allowed, remaining, _ := store.Allow(ctx, key, config)
		if !allowed {
			t.Errorf("request %d should be allowed", i+1)
		}
		if want := 4 - i; remaining != want {
			t.Errorf("request %d: remaining = %d, want %d", i+1, remaining, want)
		}
	}

	allowed, remaining, retryAfter := store.Allow(ctx, key, config)
	if allowed {
		t.Error("request over the limit should be blocked")
	}
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0 when blocked", remaining)
	}
	if retryAfter <= 0 || retryAfter > 60 {
		t.Errorf("retryAfter = %d, want within (0, 60]", retryAfter)
	}
}

func TestRedisRateLimitStore_KeysAreIndependent(t *testing.T) {
	store, client := redisStore(t)
	config := RateLimitConfig{RequestsPerWindow: 1, WindowDuration: time.Minute}

	ctx := context.Background()
	keyA := uniqueKey(t) + ":a"
	keyB := uniqueKey(t) + ":b"
	defer client.Del(ctx, keyA, keyB)

	for _, key := range []string{keyA, keyB} {
		if ok, _, _ := store.Allow(ctx, key, config); !ok {
			t.Errorf("first request for %s should be allowed", key)
		}
		if ok, _, _ := store.Allow(ctx, key, config); ok {
			t.Errorf("second request for %s should be blocked", key)
		}
	}
}

func TestRedisRateLimitStore_WindowExpiry(t *testing.T) {
	store, client := redisStore(t)
	config := RateLimitConfig{RequestsPerWindow: 1, WindowDuration: 100 * time.Millisecond}

	ctx := context.Background()
	key := uniqueKey(t)
	defer client.Del(ctx, key)

	store.Allow(ctx, key, config)
	if ok, _, _ := store.Allow(ctx, key, config); ok {
		t.Fatal("second request within the window should be blocked")
	}

	time.Sleep(150 * time.Millisecond)

	if ok, _, _ := store.Allow(ctx, key, config); !ok {
		t.Error("request in a fresh window should be allowed")
	}
}

func TestRedisRateLimitStore_FailOpen(t *testing.T) {
	// Unreachable port; every command errors.
	client := redis.NewClient(&redis.Options{Addr: "localhost:9999"})
	defer client.Close()

	store := NewRedisRateLimitStore(client)
	config := RateLimitConfig{RequestsPerWindow: 5, WindowDuration: time.Minute}

	allowed, remaining, _ := store.Allow(context.Background(), "any-key", config)
	if !allowed {
		t.Error("store must fail open when Redis is unreachable")
	}
	if remaining != config.RequestsPerWindow {
		t.Errorf("remaining = %d, want the full quota on error", remaining)
	}
}
