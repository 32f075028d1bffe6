package mock

import (
	"context"

	"github.com/civicsignal/civicsignal/core"
)

// MockChatModel is a test double for ai.ChatModel.
// It allows custom behavior injection via function fields.
type MockChatModel struct {
	// CompleteFunc is called by Complete if set.
	// If nil, returns Reply.
	CompleteFunc func(ctx context.Context, messages []core.ChatMessage) (string, error)

	// Reply is the canned response returned when CompleteFunc is nil.
	Reply string

	callCount int
	lastCall  []core.ChatMessage
}

// NewMockChatModel creates a mock chat model with a canned default reply.
// Note: Returns concrete type to allow test assertions.
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{Reply: "mock reply"}
}

// Complete records the conversation and returns the injected or canned reply.
func (m *MockChatModel) Complete(ctx context.Context, messages []core.ChatMessage) (string, error) {
	m.callCount++
	m.lastCall = messages

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, messages)
	}
	return m.Reply, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockChatModel) CallCount() int {
	return m.callCount
}

// LastMessages returns the conversation passed to the most recent Complete call.
func (m *MockChatModel) LastMessages() []core.ChatMessage {
	return m.lastCall
}

// Reset clears the call count and injected behavior.
func (m *MockChatModel) Reset() {
	m.callCount = 0
	m.lastCall = nil
	m.CompleteFunc = nil
	m.Reply = "mock reply"
}
