package memory

import (
	"context"
	"sync"

	"github.com/hupe1980/agentloop/core"
)

// Options configures the in-process store.
type Options struct {
	// MaxItems caps the messages kept per thread. Zero keeps everything.
	MaxItems int
}

// InMemoryStore is a process-local MemoryStore keyed by thread id. Histories
// are copied on the way in and out so callers never share backing arrays.
//
// Concurrency: protected by RWMutex. Contents are lost on restart; use
// filestore, redisstore or sqlstore for durable history.
type InMemoryStore struct {
	mu       sync.RWMutex
	threads  map[string][]core.Message
	maxItems int
}

var _ core.MemoryStore = (*InMemoryStore)(nil)

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &InMemoryStore{
		threads:  make(map[string][]core.Message),
		maxItems: opts.MaxItems,
	}
}

// Load returns a copy of the thread's history; unknown threads are empty.
func (s *InMemoryStore) Load(ctx context.Context, threadID string) ([]core.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]core.Message{}, s.threads[threadID]...), nil
}

// Save replaces the thread's history, keeping at most MaxItems messages.
func (s *InMemoryStore) Save(ctx context.Context, threadID string, history []core.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	kept := Truncate(append([]core.Message(nil), history...), s.maxItems)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.threads[threadID] = kept

	return nil
}

// Delete drops the thread's history.
func (s *InMemoryStore) Delete(ctx context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.threads, threadID)

	return nil
}

// Threads returns the number of threads with stored history.
func (s *InMemoryStore) Threads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.threads)
}
