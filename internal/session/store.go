package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNoSession = errors.New("no active review")

// Store keeps at most one review per user. Put replaces any previous one.
type Store interface {
	Get(ctx context.Context, userID int64) (*Review, error)
	Put(ctx context.Context, userID int64, r *Review) error
	Delete(ctx context.Context, userID int64) error
}

// MemoryStore hands out copies, so callers mutate and Put back.
type MemoryStore struct {
	mu      sync.Mutex
	reviews map[int64]*Review
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reviews: make(map[int64]*Review)}
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (*Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return r.clone(), nil
}

func (s *MemoryStore) Put(_ context.Context, userID int64, r *Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[userID] = r.clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reviews, userID)
	return nil
}

// Prune drops reviews untouched for longer than maxIdle.
func (s *MemoryStore) Prune(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for id, r := range s.reviews {
		if r.UpdatedAt.Before(cutoff) {
			delete(s.reviews, id)
			removed++
		}
	}
	return removed
}

// RedisStore keeps reviews as JSON with a sliding TTL, so idle reviews expire
// on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(client *redis.Client, ttl time.Duration, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "review"
	}
	return &RedisStore{client: client, ttl: ttl, prefix: prefix}
}

func (s *RedisStore) key(userID int64) string {
	return s.prefix + ":" + strconv.FormatInt(userID, 10)
}

func (s *RedisStore) Get(ctx context.Context, userID int64) (*Review, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("redis get review: %w", err)
	}
	var r Review
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode review: %w", err)
	}
	return &r, nil
}

func (s *RedisStore) Put(ctx context.Context, userID int64, r *Review) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode review: %w", err)
	}
	if err := s.client.Set(ctx, s.key(userID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set review: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del review: %w", err)
	}
	return nil
}
