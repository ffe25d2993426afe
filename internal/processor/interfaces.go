package processor

import (
	"context"

	"resume-match-go/internal/matcher"
	"resume-match-go/internal/types"
)

//
// 解析相关接口
//

// StructuredExtractor 外部结构化抽取能力，parser.LLMStructuredExtractor 实现了该接口。
// 返回错误表示能力本身不可用（超时、调用失败），此时结果不可信。
type StructuredExtractor interface {
	Extract(ctx context.Context, text string) (types.ParsedResume, error)
}

// HeuristicParser 基于规则的兜底解析
type HeuristicParser interface {
	Parse(text string) types.ParsedResume
}

// DocumentTextExtractor 文档转纯文本，parser.EinoPDFTextExtractor 实现了该接口
type DocumentTextExtractor interface {
	ExtractText(ctx context.Context, data []byte, filename string) (string, error)
}

//
// 匹配相关接口
//

// ResumeMatcher 计算匹配分，matcher.Scorer 实现了该接口。Match 从不失败。
type ResumeMatcher interface {
	Match(ctx context.Context, resume types.ParsedResume, job types.JobRequirement, weights *matcher.Weights) types.MatchResult
}
