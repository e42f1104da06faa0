package llm

import (
	"context"
	"sync"
)

// MockCall records one Chat invocation against a MockClient.
type MockCall struct {
	Role     string
	Messages []Message
}

// MockClient is a scripted Client for tests. Responses are consumed in FIFO
// order; an exhausted script returns "mock-response".
type MockClient struct {
	mu        sync.Mutex
	responses []string
	calls     []MockCall
}

// NewMockClient creates an empty mock.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// PushResponse queues the next canned response.
func (m *MockClient) PushResponse(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, response)
}

// Calls returns a copy of every recorded invocation.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Chat implements Client.
func (m *MockClient) Chat(_ context.Context, role string, messages []Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recorded := make([]Message, len(messages))
	copy(recorded, messages)
	m.calls = append(m.calls, MockCall{Role: role, Messages: recorded})

	if len(m.responses) == 0 {
		return "mock-response", nil
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	return next, nil
}
