package testutil

import (
	"context"
	"sync"

	"github.com/codeGROOVE-dev/review-reminder/pkg/slack"
)

// PostMessageCall records one delivery attempt.
type PostMessageCall struct {
	Channel string
	Message slack.Message
}

// MockSlackClient implements slack.API for testing, recording every delivery.
type MockSlackClient struct {
	errors map[string]error
	calls  []PostMessageCall
	mu     sync.Mutex
}

var _ slack.API = (*MockSlackClient)(nil)

// NewMockSlackClient creates an empty MockSlackClient.
func NewMockSlackClient() *MockSlackClient {
	return &MockSlackClient{errors: make(map[string]error)}
}

// SetError configures a delivery error for a channel.
func (m *MockSlackClient) SetError(channel string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[channel] = err
}

// PostMessage records the call and returns any configured error.
func (m *MockSlackClient) PostMessage(_ context.Context, channel string, msg slack.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, PostMessageCall{Channel: channel, Message: msg})

	return m.errors[channel]
}

// Calls returns the recorded deliveries, in order.
func (m *MockSlackClient) Calls() []PostMessageCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PostMessageCall(nil), m.calls...)
}
