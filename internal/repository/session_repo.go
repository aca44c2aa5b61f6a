package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"gemini-chat/internal/models"
)

// MemorySessionRepo keeps sessions in process memory. Get and Save copy, so
// callers never share a *models.Session.
type MemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*models.Session
	lastSeen map[uuid.UUID]time.Time
}

func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{
		sessions: make(map[uuid.UUID]*models.Session),
		lastSeen: make(map[uuid.UUID]time.Time),
	}
}

// Get returns the stored session, or a new empty one on first visit.
func (r *MemorySessionRepo) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return models.NewSession(id), nil
	}
	r.lastSeen[id] = time.Now().UTC()
	return s.Clone(), nil
}

func (r *MemorySessionRepo) Save(ctx context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[s.ID] = s.Clone()
	r.lastSeen[s.ID] = time.Now().UTC()
	return nil
}

func (r *MemorySessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	delete(r.lastSeen, id)
	return nil
}

// Sweep destroys sessions not read or written within idle and returns their IDs.
func (r *MemorySessionRepo) Sweep(idle time.Duration, now time.Time) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []uuid.UUID
	for id, seen := range r.lastSeen {
		if now.Sub(seen) > idle {
			expired = append(expired, id)
			delete(r.sessions, id)
			delete(r.lastSeen, id)
		}
	}
	return expired
}

func (r *MemorySessionRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// RedisSessionRepo stores each session as JSON with a sliding TTL so several
// server processes can serve the same browser.
type RedisSessionRepo struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisSessionRepo(redisClient *redis.Client, ttl time.Duration) *RedisSessionRepo {
	return &RedisSessionRepo{redis: redisClient, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return "chat_session:" + id.String()
}

func (r *RedisSessionRepo) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	data, err := r.redis.GetEx(ctx, sessionKey(id), r.ttl).Bytes()
	if err == redis.Nil {
		return models.NewSession(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	if s.Messages == nil {
		s.Messages = []models.Message{}
	}
	return &s, nil
}

func (r *RedisSessionRepo) Save(ctx context.Context, s *models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", s.ID, err)
	}
	if err := r.redis.Set(ctx, sessionKey(s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", s.ID, err)
	}
	return nil
}

func (r *RedisSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.redis.Del(ctx, sessionKey(id)).Err()
}
