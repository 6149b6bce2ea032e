package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentloop/core"
)

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Queued replies are returned first, in order; afterwards canned responses
// keyed by the last user message apply, falling back to an echo.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	queue     []mockReply
	requests  []Request
}

type mockReply struct {
	resp *Response
	err  error
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// QueueResponse appends a scripted response.
func (m *MockModel) QueueResponse(resp *Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockReply{resp: resp})
}

// QueueError appends a scripted failure.
func (m *MockModel) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockReply{err: err})
}

// Requests returns the requests received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// Calls returns the number of Generate calls.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req.Messages = append([]core.Message(nil), req.Messages...)
	m.requests = append(m.requests, req)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next.resp, next.err
	}

	var input string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if um, ok := req.Messages[i].(core.UserMessage); ok {
			input = um.Content
			break
		}
	}

	if text, ok := m.responses[input]; ok {
		return TextResponse(text), nil
	}

	return TextResponse(fmt.Sprintf("Mock response to: %s", input)), nil
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
