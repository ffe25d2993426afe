package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const (
	// DashScope 的 OpenAI 兼容接口
	defaultAPIURL    = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
	defaultModelName = "qwen-plus"
	defaultTimeout   = 60 * time.Second
)

// ErrEmptyChoices 接口返回的 choices 为空
var ErrEmptyChoices = errors.New("completion response has no choices")

// StatusError 接口返回非 200 状态码
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion API returned status %d: %s", e.StatusCode, e.Body)
}

// Temporary 429 和 5xx 可以重试
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// QwenChatModel 通过 OpenAI 兼容协议调用通义千问等文本补全模型，实现 model.ToolCallingChatModel。
// 只支持非流式调用；两次请求之间默认保持 minInterval 的节流间隔，可用 WithSkipDelay 等选项逐次调整。
type QwenChatModel struct {
	apiKey      string
	modelName   string
	apiURL      string
	httpClient  *http.Client
	minInterval time.Duration
	logger      *log.Logger

	mu          sync.Mutex
	lastRequest time.Time
	tools       []openAITool
}

// QwenOption 配置 QwenChatModel
type QwenOption func(*QwenChatModel)

// WithAPIURL 设置接口地址
func WithAPIURL(url string) QwenOption {
	return func(m *QwenChatModel) {
		if strings.TrimSpace(url) != "" {
			m.apiURL = url
		}
	}
}

// WithModelName 设置默认模型名
func WithModelName(name string) QwenOption {
	return func(m *QwenChatModel) {
		if strings.TrimSpace(name) != "" {
			m.modelName = name
		}
	}
}

// WithHTTPClient 替换 HTTP 客户端
func WithHTTPClient(c *http.Client) QwenOption {
	return func(m *QwenChatModel) {
		if c != nil {
			m.httpClient = c
		}
	}
}

// WithTimeout 设置单次请求超时
func WithTimeout(d time.Duration) QwenOption {
	return func(m *QwenChatModel) {
		if d > 0 {
			m.httpClient.Timeout = d
		}
	}
}

// WithMinInterval 设置两次请求之间的最小间隔
func WithMinInterval(d time.Duration) QwenOption {
	return func(m *QwenChatModel) {
		m.minInterval = d
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *log.Logger) QwenOption {
	return func(m *QwenChatModel) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewQwenChatModel 创建模型客户端，apiKey 不能为空
func NewQwenChatModel(apiKey string, opts ...QwenOption) (*QwenChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}
	m := &QwenChatModel{
		apiKey:     apiKey,
		modelName:  defaultModelName,
		apiURL:     defaultAPIURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger.Printf("文本补全客户端: url=%s model=%s", m.apiURL, m.modelName)
	return m, nil
}

type openAITool struct {
	Type     string         `json:"type"`
	Function openAIFunction `json:"function"`
}

type openAIFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature *float32        `json:"temperature,omitempty"`
	MaxTokens   *int            `json:"max_tokens,omitempty"`
	TopP        *float32        `json:"top_p,omitempty"`
	Stop        []string        `json:"stop,omitempty"`
	Tools       []openAITool    `json:"tools,omitempty"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage,omitempty"`
}

// Generate 发送一次补全请求
func (m *QwenChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	common := model.GetCommonOptions(&model.Options{Model: &m.modelName}, opts...)
	timing := model.GetImplSpecificOptions(&timingOptions{}, opts...)

	if err := m.pace(ctx, timing); err != nil {
		return nil, err
	}

	req := completionRequest{
		Model:       *common.Model,
		Temperature: common.Temperature,
		MaxTokens:   common.MaxTokens,
		TopP:        common.TopP,
		Stop:        common.Stop,
		Tools:       m.boundTools(),
	}
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		req.Messages = append(req.Messages, openAIMessage{Role: string(msg.Role), Content: msg.Content})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送 HTTP 请求失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}
	m.logger.Printf("补全请求完成: model=%s status=%d 耗时=%v", req.Model, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), 500)}
	}

	var out completionResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("反序列化响应失败: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, ErrEmptyChoices
	}

	content := ""
	if c := out.Choices[0].Message.Content; c != nil {
		content = *c
	}
	msg := schema.AssistantMessage(content, nil)
	msg.ResponseMeta = &schema.ResponseMeta{FinishReason: out.Choices[0].FinishReason}
	if out.Usage != nil {
		msg.ResponseMeta.Usage = &schema.TokenUsage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.PromptTokens + out.Usage.CompletionTokens,
		}
	}
	return msg, nil
}

// pace 按节流提示等待，并登记本次请求时间
func (m *QwenChatModel) pace(ctx context.Context, timing *timingOptions) error {
	m.mu.Lock()
	var since time.Duration
	if m.lastRequest.IsZero() {
		since = m.minInterval
	} else {
		since = time.Since(m.lastRequest)
	}
	wait := delayBefore(timing, m.minInterval, since)
	m.lastRequest = time.Now().Add(wait)
	m.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stream 不支持流式调用
func (m *QwenChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("QwenChatModel 不支持流式调用")
}

// WithTools 返回绑定了工具的新实例，原实例不变
func (m *QwenChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	bound := make([]openAITool, 0, len(tools))
	for _, t := range tools {
		if t == nil {
			continue
		}
		params := json.RawMessage(`{"type":"object","properties":{}}`)
		if t.ParamsOneOf != nil {
			if s, err := t.ParamsOneOf.ToOpenAPIV3(); err == nil && s != nil {
				if raw, err := json.Marshal(s); err == nil {
					params = raw
				}
			}
		}
		bound = append(bound, openAITool{
			Type:     "function",
			Function: openAIFunction{Name: t.Name, Description: t.Desc, Parameters: params},
		})
	}
	clone := &QwenChatModel{
		apiKey:      m.apiKey,
		modelName:   m.modelName,
		apiURL:      m.apiURL,
		httpClient:  m.httpClient,
		minInterval: m.minInterval,
		logger:      m.logger,
		tools:       bound,
	}
	return clone, nil
}

func (m *QwenChatModel) boundTools() []openAITool {
	if len(m.tools) == 0 {
		return nil
	}
	return m.tools
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

var _ model.ToolCallingChatModel = (*QwenChatModel)(nil)
