package services

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestMemoryReplyCache(t *testing.T) {
	cache := NewMemoryReplyCache()
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "hello"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	cache.Set(ctx, "hello", Exchange{Outcome: OutcomeOK, Text: "hi"})

	ex, ok := cache.Get(ctx, "hello")
	if !ok || ex.Text != "hi" {
		t.Fatalf("expected hit with 'hi', got %+v, %v", ex, ok)
	}
	if _, ok := cache.Get(ctx, "Hello"); ok {
		t.Fatalf("cache must key on the exact input")
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", cache.Len())
	}
}

func TestReplyCacheKey(t *testing.T) {
	const flash = "gemini-1.5-flash"

	if got := replyCacheKey(flash, "a"); !strings.HasPrefix(got, "reply:"+flash+":") {
		t.Fatalf("expected key scoped by model, got %q", got)
	}
	if replyCacheKey(flash, "a") == replyCacheKey(flash, "b") {
		t.Fatalf("distinct inputs must map to distinct keys")
	}
	if replyCacheKey(flash, "a") != replyCacheKey(flash, "a") {
		t.Fatalf("key must be deterministic")
	}
	if replyCacheKey(flash, "a") == replyCacheKey("gemini-1.5-pro", "a") {
		t.Fatalf("distinct models must map to distinct keys")
	}
}

func TestRedisReplyCache_RoundTrip(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("invalid REDIS_URL: %v", err)
	}
	client := redis.NewClient(opt)
	defer client.Close()

	cache := NewRedisReplyCache(client, "test-model", 0)
	ctx := context.Background()
	message := "cache round trip test message"
	defer client.Del(ctx, replyCacheKey("test-model", message))

	want := Exchange{Outcome: OutcomeAPIError, StatusCode: 500, Body: "oops"}
	cache.Set(ctx, message, want)

	got, ok := cache.Get(ctx, message)
	if !ok {
		t.Fatalf("expected hit after set")
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}
