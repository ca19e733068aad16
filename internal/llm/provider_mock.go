package llm

import (
	"context"
	"time"
)

// MockProvider implements Provider for testing. Responses are served from a
// scripted queue so tests can exercise the repair-retry path; the last
// response repeats once the queue is exhausted. Calls counts every Generate
// invocation.
type MockProvider struct {
	Responses    []string
	Errors       []error
	Calls        int
	PingErr      error
	InputTokens  int
	OutputTokens int
}

// NewMockProvider creates a mock provider that returns the given responses
// in order.
func NewMockProvider(responses ...string) *MockProvider {
	return &MockProvider{
		Responses:    responses,
		InputTokens:  100,
		OutputTokens: 50,
	}
}

func (p *MockProvider) Name() string { return "Mock" }

func (p *MockProvider) Ping(_ context.Context) error {
	return p.PingErr
}

func (p *MockProvider) Generate(_ context.Context, _, _ string, _ Options) (*Response, error) {
	i := p.Calls
	p.Calls++

	if i < len(p.Errors) && p.Errors[i] != nil {
		return nil, p.Errors[i]
	}

	content := ""
	if len(p.Responses) > 0 {
		if i >= len(p.Responses) {
			i = len(p.Responses) - 1
		}
		content = p.Responses[i]
	}

	return &Response{
		Content:      content,
		Model:        "mock",
		InputTokens:  p.InputTokens,
		OutputTokens: p.OutputTokens,
		StopReason:   "stop",
		Duration:     time.Millisecond,
	}, nil
}
