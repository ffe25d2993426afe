package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorType 写入 span 的 error.type 属性，用于按来源过滤
type ErrorType string

const (
	ErrorTypeRedis      ErrorType = "redis"
	ErrorTypeLLM        ErrorType = "llm"
	ErrorTypeDocument   ErrorType = "document"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeInternal   ErrorType = "internal"
	// ErrorTypeExternal 外部能力整体不可用（重试耗尽、冷却中）
	ErrorTypeExternal ErrorType = "external_system"
)

// RecordError 记录错误并把 span 置为 Error。span 或 err 为 nil 时什么都不做。
func RecordError(span trace.Span, err error, errorType ErrorType, attrs ...attribute.KeyValue) {
	if span == nil || err == nil {
		return
	}

	span.RecordError(err)
	span.SetAttributes(
		attribute.String("error.type", string(errorType)),
		attribute.String("error.message", TruncateString(err.Error(), DefaultMaxLength)),
	)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	span.SetStatus(codes.Error, TruncateString(err.Error(), DefaultMaxLength))
}

// RecordFallback 记录一次降级事件（例如外部抽取退回启发式解析）。降级不是错误，span 状态保持不变。
func RecordFallback(span trace.Span, from, to, reason string) {
	if span == nil {
		return
	}
	span.AddEvent("fallback", trace.WithAttributes(
		attribute.String("fallback.from", from),
		attribute.String("fallback.to", to),
		attribute.String("fallback.reason", TruncateString(reason, DefaultMaxLength)),
	))
}
