// Package testutil provides test doubles for packages that depend on the
// llm client.
package testutil

import (
	"context"
	"sync"

	"prospectus/llm"
)

// MockLLMClient is a thread-safe mock LLM client for testing. It captures
// the requests passed to Complete and CompleteStream and returns configured
// responses.
//
// Usage:
//
//	// Single response mock
//	mock := &MockLLMClient{
//	    Responses: []*llm.Response{
//	        {Content: `{"links": []}`, Model: "test-model"},
//	    },
//	}
//
//	// Streamed chunks
//	mock := &MockLLMClient{
//	    StreamTexts: []string{"# Acme", " builds rockets"},
//	}
//
//	// Error response
//	mock := &MockLLMClient{
//	    Err: errors.New("connection failed"),
//	}
type MockLLMClient struct {
	mu               sync.Mutex
	capturedRequests []llm.Request

	// Responses are returned by Complete in sequence.
	Responses []*llm.Response

	// StreamTexts are delivered by CompleteStream as one event each,
	// followed by a Done event.
	StreamTexts []string

	// StreamErr, when set, is delivered after StreamTexts instead of the
	// Done event. Simulates a mid-stream failure.
	StreamErr error

	// Err is returned by both methods before anything else when set.
	Err error

	callCount     int
	responseIndex int
}

// Complete returns the next response from Responses, or Err if set.
func (m *MockLLMClient) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.capturedRequests = append(m.capturedRequests, req)
	m.callCount++

	if m.Err != nil {
		return nil, m.Err
	}

	if m.responseIndex < len(m.Responses) {
		resp := m.Responses[m.responseIndex]
		m.responseIndex++
		return resp, nil
	}

	// Default response if no responses configured
	return &llm.Response{Content: "", Model: "test-model"}, nil
}

// CompleteStream delivers StreamTexts as events, then either StreamErr or a
// Done event. Returns Err immediately when set.
func (m *MockLLMClient) CompleteStream(ctx context.Context, req llm.Request) (*llm.Stream, error) {
	m.mu.Lock()
	m.capturedRequests = append(m.capturedRequests, req)
	m.callCount++

	if m.Err != nil {
		m.mu.Unlock()
		return nil, m.Err
	}

	texts := m.StreamTexts
	streamErr := m.StreamErr
	m.mu.Unlock()

	events := make(chan llm.StreamEvent)
	go func() {
		defer close(events)
		for _, text := range texts {
			select {
			case events <- llm.StreamEvent{Text: text}:
			case <-ctx.Done():
				return
			}
		}
		if streamErr != nil {
			select {
			case events <- llm.StreamEvent{Err: streamErr}:
			case <-ctx.Done():
			}
			return
		}
		select {
		case events <- llm.StreamEvent{Done: true, FinishReason: "stop"}:
		case <-ctx.Done():
		}
	}()

	return &llm.Stream{
		RequestID: "mock-request",
		Model:     "test-model",
		Events:    events,
	}, nil
}

// CapturedRequests returns a copy of all requests seen so far.
func (m *MockLLMClient) CapturedRequests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	reqs := make([]llm.Request, len(m.capturedRequests))
	copy(reqs, m.capturedRequests)
	return reqs
}

// GetCallCount returns the number of calls across both methods.
func (m *MockLLMClient) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears captured state so the mock can be reused across test cases.
func (m *MockLLMClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.responseIndex = 0
	m.capturedRequests = nil
}
