package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProcessedTTL is how long a handled event ID is remembered
const ProcessedTTL = 24 * time.Hour

const processedPrefix = "notify:processed:"

// Processed is stored for each handled event
type Processed struct {
	HandledAt time.Time `json:"handled_at"`
	Recipient string    `json:"recipient"`
	Type      string    `json:"type"`
}

// IdempotencyStore remembers which events were already handled
type IdempotencyStore interface {
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	// MarkAsProcessed returns false when the event was already marked
	MarkAsProcessed(ctx context.Context, eventID string, p Processed) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type redisIdempotencyStore struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisIdempotencyStore creates a store backed by Redis SET NX keys with a TTL
func NewRedisIdempotencyStore(client *redis.Client, logger *slog.Logger) IdempotencyStore {
	return &redisIdempotencyStore{redis: client, ttl: ProcessedTTL, logger: logger}
}

func (s *redisIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	exists, err := s.redis.Exists(ctx, processedPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if event is processed: %w", err)
	}
	return exists > 0, nil
}

func (s *redisIdempotencyStore) MarkAsProcessed(ctx context.Context, eventID string, p Processed) (bool, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return false, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	ok, err := s.redis.SetNX(ctx, processedPrefix+eventID, data, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event as processed: %w", err)
	}
	return ok, nil
}

func (s *redisIdempotencyStore) Count(ctx context.Context) (int64, error) {
	var (
		cursor uint64
		count  int64
	)
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, processedPrefix+"*", 100).Result()
		if err != nil {
			return count, fmt.Errorf("failed to scan keys: %w", err)
		}
		count += int64(len(keys))
		if next == 0 {
			return count, nil
		}
		cursor = next
	}
}

type memoryIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]Processed
}

// NewMemoryIdempotencyStore creates a process-local store
func NewMemoryIdempotencyStore() IdempotencyStore {
	return &memoryIdempotencyStore{seen: make(map[string]Processed)}
}

func (s *memoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[eventID]
	return ok, nil
}

func (s *memoryIdempotencyStore) MarkAsProcessed(_ context.Context, eventID string, p Processed) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[eventID]; ok {
		return false, nil
	}
	s.seen[eventID] = p
	return true, nil
}

func (s *memoryIdempotencyStore) Count(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.seen)), nil
}
