package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-match-go/internal/cache"
	"resume-match-go/internal/retry"
	"resume-match-go/internal/tracing"
)

const tracerName = "resume-match-go/internal/parser"

// llmCaller 一次文本补全调用的公共外壳：结果记忆、按键重试、链路追踪。
// 结果按 (操作名, system, user) 的内容指纹缓存，只缓存成功且非空的响应。
type llmCaller struct {
	model  model.ToolCallingChatModel
	memo   *cache.Memoizer
	policy *retry.Policy
	opts   []model.Option
	tracer trace.Tracer
	logger *log.Logger
}

func newLLMCaller(m model.ToolCallingChatModel) *llmCaller {
	return &llmCaller{
		model:  m,
		policy: retry.NewPolicy(),
		tracer: otel.Tracer(tracerName),
		logger: log.New(io.Discard, "", 0),
	}
}

// call 返回模型响应文本；重试耗尽时返回 *retry.ExhaustedError，模型返回空内容时返回 ErrEmptyResponse
func (c *llmCaller) call(ctx context.Context, op, system, user string) (string, error) {
	if c == nil || c.model == nil {
		return "", ErrLLMUnavailable
	}
	key := cache.Fingerprint("llm:"+op, system, user)

	ctx, span := c.tracer.Start(ctx, "llm."+op, trace.WithAttributes(
		attribute.String("llm.operation", op),
		attribute.String("llm.cache_key", key),
		attribute.String("llm.prompt_preview", tracing.SafePrompt(user)),
	))
	defer span.End()

	content, hit, err := c.memo.Do(ctx, key, func(ctx context.Context) (string, error) {
		return retry.Do(ctx, c.policy, key, func(ctx context.Context) (string, error) {
			return c.generate(ctx, op, system, user)
		})
	})
	span.SetAttributes(attribute.Bool("llm.cache_hit", hit))
	if errors.Is(err, ErrEmptyResponse) {
		span.SetAttributes(attribute.Bool("llm.empty_response", true))
		return "", err
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeLLM)
		return "", err
	}
	span.SetAttributes(attribute.Int("llm.response_length", len(content)))
	return content, nil
}

func (c *llmCaller) generate(ctx context.Context, op, system, user string) (string, error) {
	messages := []*einoschema.Message{einoschema.SystemMessage(system), einoschema.UserMessage(user)}
	c.logger.Printf("[%s] 调用模型, prompt 前100字符: %.100s", op, user)

	resp, err := c.model.Generate(ctx, messages, c.opts...)
	if err != nil {
		c.logger.Printf("[%s] 模型调用失败: %v", op, err)
		return "", fmt.Errorf("%s: llm call failed: %w", op, err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		// 空响应不是调用失败：不重试、不缓存，由调用方决定如何降级
		return "", retry.Permanent(fmt.Errorf("%s: %w", op, ErrEmptyResponse))
	}
	return resp.Content, nil
}
