package core

import "context"

// MemoryStore persists conversation history per thread. Load returns an empty
// history for unknown threads; a stored history that cannot be decoded is a
// configuration error. Implementations must be safe for concurrent use
// across different threads.
type MemoryStore interface {
	Load(ctx context.Context, threadID string) ([]Message, error)
	Save(ctx context.Context, threadID string, history []Message) error
}
