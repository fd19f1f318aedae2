// Package testutil provides test utilities for the llm package.
package testutil

import (
	"context"
	"sync"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/llm"
)

// MockCompletion is a thread-safe mock implementation of llm.Completer.
// It returns configured responses in sequence and records each request.
//
// Usage:
//
//	mock := &testutil.MockCompletion{
//	    Responses: []*llm.Response{
//	        {Content: `{"primary_intent": "claim_status"}`, Model: "test-model"},
//	    },
//	}
type MockCompletion struct {
	mu            sync.Mutex
	Responses     []*llm.Response // Responses to return in sequence
	Err           error           // Error to return (takes precedence over Responses)
	requests      []llm.Request
	responseIndex int
}

// Complete implements llm.Completer. It returns the next configured
// response, or Err if set, and records the request for verification.
func (m *MockCompletion) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if m.Err != nil {
		return nil, m.Err
	}

	if m.responseIndex < len(m.Responses) {
		resp := m.Responses[m.responseIndex]
		m.responseIndex++
		return resp, nil
	}

	return &llm.Response{Content: "", Model: "test-model"}, nil
}

// Requests returns a copy of the recorded requests.
func (m *MockCompletion) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.Request(nil), m.requests...)
}

// CallCount returns the number of Complete calls.
func (m *MockCompletion) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Reset clears recorded requests and restarts the response sequence.
func (m *MockCompletion) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.responseIndex = 0
}
