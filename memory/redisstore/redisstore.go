// Package redisstore provides a MemoryStore backed by Redis. Each thread's
// history is one string key holding the JSON envelope array, optionally
// expiring after a TTL that is refreshed on every save.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/memory"
)

// DefaultKeyPrefix namespaces thread keys.
const DefaultKeyPrefix = "agentloop:thread:"

// Options configures the Redis store.
type Options struct {
	// KeyPrefix is prepended to thread ids. Defaults to DefaultKeyPrefix.
	KeyPrefix string
	// TTL expires idle threads. Zero keeps keys forever.
	TTL time.Duration
	// MaxItems caps the messages kept per thread. Zero keeps everything.
	MaxItems int
}

// Store is a Redis-backed core.MemoryStore.
type Store struct {
	rdb      redis.Cmdable
	prefix   string
	ttl      time.Duration
	maxItems int
}

var _ core.MemoryStore = (*Store)(nil)

// New creates a store on top of any go-redis client (single node, cluster
// or ring).
func New(rdb redis.Cmdable, optFns ...func(o *Options)) (*Store, error) {
	if rdb == nil {
		return nil, core.NewConfigurationError("redis client is required")
	}

	opts := Options{KeyPrefix: DefaultKeyPrefix}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{rdb: rdb, prefix: opts.KeyPrefix, ttl: opts.TTL, maxItems: opts.MaxItems}, nil
}

// NewClient opens a single-node client.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Key returns the Redis key of a thread.
func (s *Store) Key(threadID string) string { return s.prefix + threadID }

// Load returns the thread's history; a missing key is an empty history.
func (s *Store) Load(ctx context.Context, threadID string) ([]core.Message, error) {
	data, err := s.rdb.Get(ctx, s.Key(threadID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []core.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.Key(threadID), err)
	}

	return core.DecodeMessages(data)
}

// Save replaces the thread's history.
func (s *Store) Save(ctx context.Context, threadID string, history []core.Message) error {
	data, err := core.EncodeMessages(memory.Truncate(history, s.maxItems))
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if err := s.rdb.Set(ctx, s.Key(threadID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.Key(threadID), err)
	}

	return nil
}

// Delete removes the thread's key.
func (s *Store) Delete(ctx context.Context, threadID string) error {
	if err := s.rdb.Del(ctx, s.Key(threadID)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.Key(threadID), err)
	}
	return nil
}
