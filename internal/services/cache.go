package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplyCache memoizes exchanges by exact input text. Implementations decide
// expiry; callers only see hits and misses.
type ReplyCache interface {
	Get(ctx context.Context, message string) (Exchange, bool)
	Set(ctx context.Context, message string, ex Exchange)
}

// MemoryReplyCache keeps entries for the life of the process.
type MemoryReplyCache struct {
	mu      sync.RWMutex
	entries map[string]Exchange
}

func NewMemoryReplyCache() *MemoryReplyCache {
	return &MemoryReplyCache{entries: make(map[string]Exchange)}
}

func (c *MemoryReplyCache) Get(ctx context.Context, message string) (Exchange, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ex, ok := c.entries[message]
	return ex, ok
}

func (c *MemoryReplyCache) Set(ctx context.Context, message string, ex Exchange) {
	c.mu.Lock()
	c.entries[message] = ex
	c.mu.Unlock()
}

func (c *MemoryReplyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RedisReplyCache shares memoized replies between server processes. Keys are
// scoped by model so switching GEMINI_MODEL never serves another model's
// answers. A zero TTL stores entries without expiry.
type RedisReplyCache struct {
	redis *redis.Client
	model string
	ttl   time.Duration
}

func NewRedisReplyCache(redisClient *redis.Client, model string, ttl time.Duration) *RedisReplyCache {
	return &RedisReplyCache{redis: redisClient, model: model, ttl: ttl}
}

func replyCacheKey(model, message string) string {
	sum := sha256.Sum256([]byte(message))
	return "reply:" + model + ":" + hex.EncodeToString(sum[:])
}

func (c *RedisReplyCache) Get(ctx context.Context, message string) (Exchange, bool) {
	data, err := c.redis.Get(ctx, replyCacheKey(c.model, message)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("WARNING: reply cache read failed: %v", err)
		}
		return Exchange{}, false
	}

	var ex Exchange
	if err := json.Unmarshal(data, &ex); err != nil {
		log.Printf("WARNING: reply cache entry is corrupt: %v", err)
		return Exchange{}, false
	}
	return ex, true
}

func (c *RedisReplyCache) Set(ctx context.Context, message string, ex Exchange) {
	data, err := json.Marshal(ex)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, replyCacheKey(c.model, message), data, c.ttl).Err(); err != nil {
		log.Printf("WARNING: reply cache write failed: %v", err)
	}
}
