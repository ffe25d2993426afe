package parser

import "errors"

var (
	// ErrLLMUnavailable 未配置文本补全模型
	ErrLLMUnavailable = errors.New("llm model is not configured")
	// ErrEmptyResponse 模型返回空内容
	ErrEmptyResponse = errors.New("llm returned empty response")
	// ErrNoJSON 响应中找不到 JSON 对象
	ErrNoJSON = errors.New("no JSON object found in response")
	// ErrDocumentConversion 文档转文本失败
	ErrDocumentConversion = errors.New("document to text conversion failed")
)
