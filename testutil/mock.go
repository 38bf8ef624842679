// Package testutil provides test helpers for modelfn (e.g. MockTool, MockChatClient).
package testutil

import (
	"context"
	"sync"

	"github.com/skosovsky/modelfn"
)

// MockTool is a configurable Tool implementation for tests.
type MockTool struct {
	NameVal   string
	DescVal   string
	ParamsVal map[string]any
	CallFn    func(ctx context.Context, args []byte) (string, error)
}

// Name returns the tool name.
func (m *MockTool) Name() string {
	if m.NameVal != "" {
		return m.NameVal
	}
	return "mock"
}

// Description returns the tool description.
func (m *MockTool) Description() string {
	return m.DescVal
}

// Parameters returns the parameters schema (nil for zero-argument mocks).
func (m *MockTool) Parameters() map[string]any {
	return m.ParamsVal
}

// Call runs CallFn if set, otherwise returns an empty string.
func (m *MockTool) Call(ctx context.Context, args []byte) (string, error) {
	if m.CallFn != nil {
		return m.CallFn(ctx, args)
	}
	return "", nil
}

// Ensure MockTool implements Tool.
var _ modelfn.Tool = (*MockTool)(nil)

// MockChatClient is a scripted ChatClient for tests. Each Complete call
// returns the next queued reply (the last one repeats) and records the
// request for inspection.
type MockChatClient struct {
	Replies []string
	Err     error

	mu       sync.Mutex
	requests []modelfn.ChatRequest
}

// Complete returns the next scripted reply as a single-choice response.
func (m *MockChatClient) Complete(_ context.Context, req modelfn.ChatRequest) (*modelfn.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Replies) == 0 {
		return &modelfn.ChatResponse{}, nil
	}
	idx := len(m.requests) - 1
	if idx >= len(m.Replies) {
		idx = len(m.Replies) - 1
	}
	return &modelfn.ChatResponse{
		Choices: []modelfn.Choice{{Message: modelfn.AssistantMessage{Content: m.Replies[idx]}}},
	}, nil
}

// LastRequest returns the most recent request, or a zero request when none
// was made.
func (m *MockChatClient) LastRequest() modelfn.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return modelfn.ChatRequest{}
	}
	return m.requests[len(m.requests)-1]
}

// Requests returns a copy of all recorded requests.
func (m *MockChatClient) Requests() []modelfn.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]modelfn.ChatRequest(nil), m.requests...)
}

var _ modelfn.ChatClient = (*MockChatClient)(nil)
