package memory

import "github.com/hupe1980/agentloop/core"

// DefaultCapacity bounds a conversation when no capacity is configured.
const DefaultCapacity = 1000

// Conversation is the bounded history of one thread. It holds at most
// Capacity messages and evicts the oldest first.
//
// A Conversation is owned by a single turn at a time and is not safe for
// concurrent mutation; the runner package serializes turns per thread.
type Conversation struct {
	capacity int
	messages []core.Message
}

// NewConversation creates a conversation seeded with history. A capacity
// below one selects DefaultCapacity. History beyond the capacity is
// truncated from the front.
func NewConversation(capacity int, history []core.Message) *Conversation {
	if capacity < 1 {
		capacity = DefaultCapacity
	}

	c := &Conversation{capacity: capacity}
	c.messages = Truncate(append([]core.Message(nil), history...), capacity)

	return c
}

// Append records one completed turn: the user message that started it and
// the assistant's final message, then truncates to capacity.
func (c *Conversation) Append(user, assistant core.Message) {
	c.messages = Truncate(append(c.messages, user, assistant), c.capacity)
}

// Messages returns a copy of the history, oldest first.
func (c *Conversation) Messages() []core.Message {
	return append([]core.Message(nil), c.messages...)
}

// Len returns the number of retained messages.
func (c *Conversation) Len() int { return len(c.messages) }

// Capacity returns the maximum number of retained messages.
func (c *Conversation) Capacity() int { return c.capacity }

// Truncate keeps the last capacity entries of msgs. A capacity below one
// leaves msgs unchanged.
func Truncate(msgs []core.Message, capacity int) []core.Message {
	if capacity < 1 || len(msgs) <= capacity {
		return msgs
	}

	kept := make([]core.Message, capacity)
	copy(kept, msgs[len(msgs)-capacity:])

	return kept
}
