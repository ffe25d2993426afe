package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ErrMockExhausted 顺序响应已用完
var ErrMockExhausted = errors.New("mock client has run out of sequential responses")

// MockResponse MockChatClient 的单次响应
type MockResponse struct {
	Content string
	Error   error
}

// MockChatClient 用于测试的 model.ToolCallingChatModel 实现，可被并发调用。
// 设置了 Responder 时优先使用它，否则按顺序返回 SequentialResponses，
// 都未设置时返回固定的 ExpectedResponse/ExpectedError。
type MockChatClient struct {
	ExpectedResponse string
	ExpectedError    error

	SequentialResponses []MockResponse
	// Responder 按收到的消息动态生成响应
	Responder func(messages []*schema.Message) (string, error)

	mu       sync.Mutex
	index    int
	calls    int
	received [][]*schema.Message
}

// NewMockChatClient 创建返回固定响应的 MockChatClient
func NewMockChatClient(expectedResponse string, expectedError error) *MockChatClient {
	return &MockChatClient{ExpectedResponse: expectedResponse, ExpectedError: expectedError}
}

// NewMockChatClientSequential 创建按顺序返回响应的 MockChatClient
func NewMockChatClientSequential(responses []MockResponse) *MockChatClient {
	return &MockChatClient{SequentialResponses: responses}
}

// Generate 返回预设响应并记录收到的消息
func (m *MockChatClient) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.calls++
	m.received = append(m.received, append([]*schema.Message(nil), input...))

	var content string
	var err error
	switch {
	case m.Responder != nil:
		responder := m.Responder
		m.mu.Unlock()
		content, err = responder(input)
		m.mu.Lock()
	case m.SequentialResponses != nil:
		if m.index >= len(m.SequentialResponses) {
			err = ErrMockExhausted
		} else {
			resp := m.SequentialResponses[m.index]
			m.index++
			content, err = resp.Content, resp.Error
		}
	default:
		content, err = m.ExpectedResponse, m.ExpectedError
	}
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return schema.AssistantMessage(content, nil), nil
}

// Stream 不支持
func (m *MockChatClient) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("streaming not implemented in MockChatClient")
}

// WithTools 忽略工具，返回自身
func (m *MockChatClient) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

// Calls 返回 Generate 被调用的次数
func (m *MockChatClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// ReceivedMessages 返回每次调用收到的消息
func (m *MockChatClient) ReceivedMessages() [][]*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]*schema.Message(nil), m.received...)
}

var _ model.ToolCallingChatModel = (*MockChatClient)(nil)
