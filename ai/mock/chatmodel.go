package mock

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"
)

// MockChatModel is a test double implementing llms.Model.
// It allows custom behavior injection via function fields and records the
// message sequences it was invoked with.
type MockChatModel struct {
	// GenerateFunc is called by GenerateContent if set.
	// If nil, the mock replies with Reply (or a fixed default).
	GenerateFunc func(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)

	// Reply is the canned response text used by the default behavior.
	Reply string

	// Err, if set, is returned by every invocation.
	Err error

	// Invocations records the message sequences passed to GenerateContent.
	Invocations [][]llms.MessageContent

	callCount int
}

var _ llms.Model = (*MockChatModel)(nil)

// NewMockChatModel creates a mock chat model with a canned reply.
// Note: Returns concrete type to allow test assertions.
func NewMockChatModel(reply string) *MockChatModel {
	return &MockChatModel{Reply: reply}
}

// GenerateContent returns the scripted response, honoring any streaming
// function supplied through the call options.
func (m *MockChatModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.callCount++
	m.Invocations = append(m.Invocations, messages)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, messages, options...)
	}
	if m.Err != nil {
		return nil, m.Err
	}

	reply := m.Reply
	if reply == "" {
		reply = "mock response"
	}

	// Forward the reply through the streaming callback when one is set,
	// mirroring how real providers deliver incremental fragments.
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}
	if opts.StreamingFunc != nil {
		if err := opts.StreamingFunc(ctx, []byte(reply)); err != nil {
			return nil, err
		}
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{Content: reply},
		},
	}, nil
}

// Call implements the deprecated single-prompt entry point of llms.Model.
func (m *MockChatModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := m.GenerateContent(ctx, []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}, options...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("mock: no choices")
	}
	return resp.Choices[0].Content, nil
}

// CallCount returns the number of times the model was invoked.
func (m *MockChatModel) CallCount() int {
	return m.callCount
}

// LastMessages returns the message sequence from the most recent invocation,
// or nil if the model was never invoked.
func (m *MockChatModel) LastMessages() []llms.MessageContent {
	if len(m.Invocations) == 0 {
		return nil
	}
	return m.Invocations[len(m.Invocations)-1]
}

// Reset clears recorded invocations and injected behavior.
func (m *MockChatModel) Reset() {
	m.callCount = 0
	m.Invocations = nil
	m.GenerateFunc = nil
	m.Err = nil
}
