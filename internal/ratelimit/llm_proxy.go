package ratelimit

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"
)

// 未配置时的默认 QPM
const defaultQPM = 30

// RateLimitedLLMModel 对模型调用按 QPM 限流的代理。重试由调用方的重试策略负责。
type RateLimitedLLMModel struct {
	original model.ToolCallingChatModel
	limiter  *rate.Limiter
}

// NewRateLimitedLLMModel 创建限流代理，突发容量为 QPM 的一半
func NewRateLimitedLLMModel(original model.ToolCallingChatModel, qpm int) *RateLimitedLLMModel {
	if qpm <= 0 {
		qpm = defaultQPM
	}
	burst := qpm / 2
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedLLMModel{
		original: original,
		limiter:  rate.NewLimiter(rate.Limit(float64(qpm)/60.0), burst),
	}
}

// NewLLMWithRateLimit 按模型名从 modelQPM 中取限额（使用其 90% 作为安全值），找不到时使用 fallbackQPM
func NewLLMWithRateLimit(original model.ToolCallingChatModel, modelName string, modelQPM map[string]int, fallbackQPM int) model.ToolCallingChatModel {
	qpm := fallbackQPM
	if q, ok := modelQPM[modelName]; ok && q > 0 {
		qpm = int(float64(q) * 0.9)
	}
	return NewRateLimitedLLMModel(original, qpm)
}

// Generate 等待令牌后调用原模型
func (rl *RateLimitedLLMModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if err := rl.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("等待限流令牌失败: %w", err)
	}
	return rl.original.Generate(ctx, messages, opts...)
}

// Stream 等待令牌后调用原模型
func (rl *RateLimitedLLMModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if err := rl.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("等待限流令牌失败: %w", err)
	}
	return rl.original.Stream(ctx, messages, opts...)
}

// WithTools 绑定工具后的模型共享同一个限流器
func (rl *RateLimitedLLMModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	m, err := rl.original.WithTools(tools)
	if err != nil {
		return nil, err
	}
	return &RateLimitedLLMModel{original: m, limiter: rl.limiter}, nil
}

var _ model.ToolCallingChatModel = (*RateLimitedLLMModel)(nil)
